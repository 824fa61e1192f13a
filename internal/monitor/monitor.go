// internal/monitor/monitor.go
package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/tamzrod/water-probe-monitor/internal/probe"
)

var (
	// ErrEscalated is returned once per run, on the transient failure that
	// pushes the consecutive count above the threshold.
	ErrEscalated = errors.New("monitor: too many consecutive transient failures")

	// ErrHalted is returned by PollOnce after escalation until Reset.
	ErrHalted = errors.New("monitor: halted after escalation")
)

// Reader is the driver side of the monitor.
type Reader interface {
	Read(ctx context.Context) (probe.Measurement, error)
}

// Output is where successful measurements go.
type Output interface {
	Connected() bool
	Write(m probe.Measurement)
}

// Observer receives one callback per completed poll.
// Implementations must not block.
type Observer interface {
	ObservePoll(o Outcome, failures int)
}

// Monitor counts consecutive transient read failures and escalates once
// the configured threshold is exceeded.
// Single goroutine use only: the owner drives it tick by tick.
type Monitor struct {
	reader    Reader
	out       Output
	threshold int
	observer  Observer

	failures int
	halted   bool
}

// New creates a monitor tolerating exactly threshold consecutive
// transient failures.
func New(reader Reader, out Output, threshold int) (*Monitor, error) {
	if reader == nil {
		return nil, errors.New("monitor: reader required")
	}
	if threshold < 0 {
		return nil, fmt.Errorf("monitor: threshold must be >= 0, got %d", threshold)
	}
	return &Monitor{reader: reader, out: out, threshold: threshold}, nil
}

// SetObserver installs o. nil disables observation.
func (m *Monitor) SetObserver(o Observer) { m.observer = o }

// Reset starts a new run: counter back to zero, polling re-enabled.
func (m *Monitor) Reset() {
	m.failures = 0
	m.halted = false
}

// Failures returns the current consecutive transient failure count.
func (m *Monitor) Failures() int { return m.failures }

// Threshold returns the configured maximum.
func (m *Monitor) Threshold() int { return m.threshold }

// Halted reports whether the monitor escalated in this run.
func (m *Monitor) Halted() bool { return m.halted }

// PollOnce performs exactly one read attempt.
//
// nil means the tick completed (success or tolerated miss). A fatal driver
// error is returned unmodified. ErrEscalated is returned on the failure
// that exceeds the threshold; afterwards ErrHalted, without reading.
func (m *Monitor) PollOnce(ctx context.Context) error {
	if m.halted {
		return ErrHalted
	}

	o := OutcomeOf(m.reader.Read(ctx))

	var err error
	switch o.Kind {
	case KindSuccess:
		m.failures = 0
		if m.out != nil && m.out.Connected() {
			m.out.Write(o.Measurement)
		}

	case KindTransient:
		m.failures++
		if m.failures > m.threshold {
			m.halted = true
			err = fmt.Errorf("%w: %d (max %d): %w", ErrEscalated, m.failures, m.threshold, o.Err)
		}

	case KindFatal:
		err = o.Err
	}

	if m.observer != nil {
		m.observer.ObservePoll(o, m.failures)
	}
	return err
}
