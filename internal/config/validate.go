// internal/config/validate.go
package config

import (
	"errors"
	"fmt"

	"github.com/tamzrod/water-probe-monitor/internal/probe"
	"github.com/tamzrod/water-probe-monitor/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	// ------------------------------------------------------------
	// PROBE
	// ------------------------------------------------------------

	p := cfg.Probe
	if p.DeviceAddress == nil {
		return errors.New("probe.device_address required")
	}
	if !probe.ValidAddress(*p.DeviceAddress) {
		return fmt.Errorf(
			"probe.device_address %d out of range %d..%d",
			*p.DeviceAddress,
			probe.MinDeviceAddress,
			probe.MaxDeviceAddress,
		)
	}
	if p.IOPort != "" {
		if _, err := probe.ParseURI(p.IOPort); err != nil {
			return fmt.Errorf("probe.io_port: %w", err)
		}
	}
	if p.IOReadTimeoutMs < 0 {
		return fmt.Errorf("probe.io_read_timeout_ms must not be negative, got %d", p.IOReadTimeoutMs)
	}
	if p.PeriodMs < 0 {
		return fmt.Errorf("probe.period_ms must not be negative, got %d", p.PeriodMs)
	}
	if p.MaxConsecutiveTimeouts != nil && *p.MaxConsecutiveTimeouts < 0 {
		return fmt.Errorf("probe.max_consecutive_timeouts must be >= 0, got %d", *p.MaxConsecutiveTimeouts)
	}

	// ------------------------------------------------------------
	// OUTPUTS
	// ------------------------------------------------------------

	if in := cfg.Outputs.Influx; in != nil {
		if in.Address == "" {
			return errors.New("outputs.influx.address required")
		}
		if in.Database == "" {
			return errors.New("outputs.influx.database required")
		}
	}

	if r := cfg.Outputs.Recorder; r != nil && r.Path == "" {
		return errors.New("outputs.recorder.path required")
	}

	if m := cfg.Outputs.Mirror; m != nil {
		if err := validateMirror(m); err != nil {
			return err
		}
	}

	return nil
}

// ValidateStandalone adds the checks for running without a host process.
// Nothing attaches a link in that mode, so probe.io_port is required.
func ValidateStandalone(cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	if cfg.Probe.IOPort == "" {
		return errors.New("probe.io_port required: no host link is attached in standalone mode")
	}
	return nil
}

func validateMirror(m *MirrorConfig) error {
	if m.Endpoint == "" {
		return errors.New("outputs.mirror.endpoint required")
	}
	if int(m.Address)+probe.RegisterCount > 0x10000 {
		return fmt.Errorf("outputs.mirror.address %d: block does not fit", m.Address)
	}

	// status is opt-in
	if m.Status == nil {
		return nil
	}
	s := m.Status

	// device_name sanity (ASCII only)
	for i := 0; i < len(s.DeviceName); i++ {
		if s.DeviceName[i] > 0x7F {
			return errors.New("outputs.mirror.status.device_name must contain ASCII characters only")
		}
	}

	base := int(s.Slot) * status.SlotsPerDevice
	if base+status.SlotsPerDevice > 0x10000 {
		return fmt.Errorf("outputs.mirror.status.slot %d out of range", s.Slot)
	}

	// status and data sharing a unit must not overlap (inclusive ranges)
	if s.UnitID == m.UnitID {
		start, end := int(m.Address), int(m.Address)+probe.RegisterCount-1
		sStart, sEnd := base, base+status.SlotsPerDevice-1
		if !(end < sStart || start > sEnd) {
			return fmt.Errorf(
				"mirror overlap: unit_id=%d data range=%d-%d overlaps status range=%d-%d",
				m.UnitID,
				start,
				end,
				sStart,
				sEnd,
			)
		}
	}

	return nil
}
