// internal/status/snapshot.go
package status

import "time"

// Snapshot is a point-in-time view of one probe task.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Probe string `json:"probe"`
	RunID string `json:"run_id,omitempty"`

	State     string `json:"state"`
	StateCode uint16 `json:"state_code"`
	Health    uint16 `json:"health"`

	ConsecutiveFailures    int `json:"consecutive_failures"`
	MaxConsecutiveFailures int `json:"max_consecutive_failures"`

	LastErrorCode uint16 `json:"last_error_code"`
	LastError     string `json:"last_error,omitempty"`
	Fault         string `json:"fault,omitempty"`

	SecondsInError uint16 `json:"seconds_in_error"`

	LastMeasurement time.Time `json:"last_measurement,omitempty"`
}

// HealthName returns a label for a health code.
func HealthName(h uint16) string {
	switch h {
	case HealthUnknown:
		return "unknown"
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	case HealthStale:
		return "stale"
	case HealthDisabled:
		return "disabled"
	default:
		return "invalid"
	}
}
