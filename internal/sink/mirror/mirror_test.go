// internal/sink/mirror/mirror_test.go
package mirror

import (
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/water-probe-monitor/internal/probe"
)

// ---- fake register writer ----

type writeCall struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeRegisterWriter struct {
	writes []writeCall
	fail   error
}

func (f *fakeRegisterWriter) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.fail != nil {
		return f.fail
	}
	f.writes = append(f.writes, writeCall{
		unitID: unitID,
		addr:   addr,
		regs:   append([]uint16(nil), regs...),
	})
	return nil
}

func (f *fakeRegisterWriter) last() writeCall {
	return f.writes[len(f.writes)-1]
}

// ---- tests ----

func TestSink_WritesRawBlock(t *testing.T) {
	cli := &fakeRegisterWriter{}
	s := NewSink(cli, 3, 100)

	var regs [probe.RegisterCount]uint16
	for i := range regs {
		regs[i] = uint16(i + 1)
	}

	if err := s.WriteMeasurement(probe.Decode(regs, time.Now())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cli.writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(cli.writes))
	}
	w := cli.writes[0]
	if w.unitID != 3 || w.addr != 100 {
		t.Fatalf("unexpected target: unit=%d addr=%d", w.unitID, w.addr)
	}
	if len(w.regs) != probe.RegisterCount {
		t.Fatalf("expected %d regs, got %d", probe.RegisterCount, len(w.regs))
	}
	for i, r := range w.regs {
		if r != regs[i] {
			t.Fatalf("reg %d: got=%d want=%d", i, r, regs[i])
		}
	}
}

func TestSink_WrapsError(t *testing.T) {
	boom := errors.New("broken pipe")
	s := NewSink(&fakeRegisterWriter{fail: boom}, 1, 0)

	err := s.WriteMeasurement(probe.Measurement{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestPackRegisters_BigEndian(t *testing.T) {
	got := packRegisters([]uint16{0x0102, 0xA0B0})
	want := []byte{0x01, 0x02, 0xA0, 0xB0}
	if string(got) != string(want) {
		t.Fatalf("got=%x want=%x", got, want)
	}
}
