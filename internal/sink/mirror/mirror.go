// internal/sink/mirror/mirror.go
package mirror

import (
	"fmt"

	"github.com/tamzrod/water-probe-monitor/internal/probe"
)

// Sink replicates the raw register block of every measurement
// into holding registers of a downstream Modbus server.
type Sink struct {
	cli     registerWriter
	unitID  uint8
	address uint16
}

// NewSink writes blocks to unitID starting at address.
func NewSink(cli registerWriter, unitID uint8, address uint16) *Sink {
	return &Sink{cli: cli, unitID: unitID, address: address}
}

func (s *Sink) Name() string { return "mirror" }

// WriteMeasurement implements output.Sink.
func (s *Sink) WriteMeasurement(m probe.Measurement) error {
	if err := s.cli.WriteRegisters(s.unitID, s.address, m.Registers[:]); err != nil {
		return fmt.Errorf("mirror: unit=%d addr=%d: %w", s.unitID, s.address, err)
	}
	return nil
}
