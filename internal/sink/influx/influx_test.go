// internal/sink/influx/influx_test.go
package influx

import (
	"errors"
	"testing"
	"time"

	client "github.com/influxdata/influxdb/client/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/water-probe-monitor/internal/probe"
)

type fakeWriter struct {
	batches []client.BatchPoints
	err     error
}

func (f *fakeWriter) Write(bp client.BatchPoints) error {
	f.batches = append(f.batches, bp)
	return f.err
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Database: "probes"}, "ap3", nil)
	assert.Error(t, err)

	_, err = New(Config{Address: "http://localhost:8086"}, "ap3", nil)
	assert.Error(t, err)
}

func TestWriteMeasurement_OnePoint(t *testing.T) {
	w := &fakeWriter{}
	s := newSink(w, Config{Database: "probes"}, "ap3", func() string { return "run-1" })

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.WriteMeasurement(probe.Measurement{Time: at, PH: 7.2, Temperature: 295.15}))

	require.Len(t, w.batches, 1)
	bp := w.batches[0]
	assert.Equal(t, "probes", bp.Database())
	assert.Equal(t, "ms", bp.Precision())

	require.Len(t, bp.Points(), 1)
	pt := bp.Points()[0]
	assert.Equal(t, DefaultMeasurement, pt.Name())
	assert.Equal(t, map[string]string{"probe": "ap3", "run_id": "run-1"}, pt.Tags())
	assert.True(t, pt.Time().Equal(at))

	fields, err := pt.Fields()
	require.NoError(t, err)
	assert.Equal(t, 7.2, fields["ph"])
	assert.Equal(t, 295.15, fields["temperature"])
	assert.Len(t, fields, 15)
}

func TestWriteMeasurement_NoRunID(t *testing.T) {
	w := &fakeWriter{}
	s := newSink(w, Config{Database: "probes", Measurement: "ap3_raw"}, "ap3", nil)

	require.NoError(t, s.WriteMeasurement(probe.Measurement{Time: time.Now()}))
	pt := w.batches[0].Points()[0]
	assert.Equal(t, "ap3_raw", pt.Name())
	assert.Equal(t, map[string]string{"probe": "ap3"}, pt.Tags())
}

func TestWriteMeasurement_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("connection refused")}
	s := newSink(w, Config{Database: "probes"}, "ap3", nil)

	err := s.WriteMeasurement(probe.Measurement{Time: time.Now()})
	require.Error(t, err)
	assert.ErrorIs(t, err, w.err)
}
