// internal/monitor/outcome.go
package monitor

import "github.com/tamzrod/water-probe-monitor/internal/probe"

// Kind tags the result of one read attempt.
type Kind uint8

const (
	KindSuccess Kind = iota
	KindTransient
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "ok"
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one read:
// Success(Measurement) | Transient(Err) | Fatal(Err).
type Outcome struct {
	Kind        Kind
	Measurement probe.Measurement
	Err         error
}

// OutcomeOf folds a driver (value, error) pair into an Outcome.
func OutcomeOf(m probe.Measurement, err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Kind: KindSuccess, Measurement: m}
	case probe.IsTransient(err):
		return Outcome{Kind: KindTransient, Err: err}
	default:
		return Outcome{Kind: KindFatal, Err: err}
	}
}
