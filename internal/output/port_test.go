// internal/output/port_test.go
package output

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/water-probe-monitor/internal/probe"
)

type fakeSink struct {
	name   string
	err    error
	writes []probe.Measurement
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) WriteMeasurement(m probe.Measurement) error {
	f.writes = append(f.writes, m)
	return f.err
}

type sinkErrors struct {
	names []string
}

func (s *sinkErrors) ObserveSinkError(sink string, err error) {
	s.names = append(s.names, sink)
}

func TestPort_ConnectedFollowsSinks(t *testing.T) {
	p := NewPort("data")
	assert.False(t, p.Connected())

	require.NoError(t, p.Connect(&fakeSink{name: "a"}))
	assert.True(t, p.Connected())

	p.Disconnect("a")
	assert.False(t, p.Connected())
}

func TestPort_DuplicateSinkRejected(t *testing.T) {
	p := NewPort("data")
	require.NoError(t, p.Connect(&fakeSink{name: "a"}))
	assert.Error(t, p.Connect(&fakeSink{name: "a"}))
}

func TestPort_WriteFansOut(t *testing.T) {
	p := NewPort("data")
	a := &fakeSink{name: "a"}
	b := &fakeSink{name: "b", err: errors.New("down")}
	c := &fakeSink{name: "c"}
	obs := &sinkErrors{}
	p.SetErrorObserver(obs)

	require.NoError(t, p.Connect(a))
	require.NoError(t, p.Connect(b))
	require.NoError(t, p.Connect(c))

	p.Write(probe.Measurement{PH: 7})

	assert.Len(t, a.writes, 1)
	assert.Len(t, b.writes, 1)
	assert.Len(t, c.writes, 1, "a failing sink must not block the others")
	assert.Equal(t, []string{"b"}, obs.names)
}

func TestPort_DisconnectKeepsOrder(t *testing.T) {
	p := NewPort("data")
	a, b, c := &fakeSink{name: "a"}, &fakeSink{name: "b"}, &fakeSink{name: "c"}
	require.NoError(t, p.Connect(a))
	require.NoError(t, p.Connect(b))
	require.NoError(t, p.Connect(c))

	p.Disconnect("b")
	p.Disconnect("missing")
	p.Write(probe.Measurement{})

	assert.Len(t, a.writes, 1)
	assert.Empty(t, b.writes)
	assert.Len(t, c.writes, 1)
}

func TestLatest(t *testing.T) {
	l := NewLatest()
	_, ok := l.Get()
	assert.False(t, ok)

	require.NoError(t, l.WriteMeasurement(probe.Measurement{PH: 6.5}))
	m, ok := l.Get()
	assert.True(t, ok)
	assert.Equal(t, 6.5, m.PH)
}
