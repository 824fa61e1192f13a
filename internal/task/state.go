// internal/task/state.go
package task

// State is the task lifecycle state.
type State uint8

const (
	// StateUninitialized: no driver. Configure is the only way out.
	StateUninitialized State = iota

	// StateReady: configured, driver open, not polling.
	StateReady

	// StateRunning: polling once per tick.
	StateRunning

	// StateStopped: stopped normally; Start resumes with a fresh run.
	StateStopped

	// StateFaulted: terminal for the run. Requires Cleanup + Configure.
	StateFaulted
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	case StateFaulted:
		return "FAULTED"
	default:
		return "UNKNOWN"
	}
}

// FaultReason tells why a task entered StateFaulted.
type FaultReason uint8

const (
	FaultNone FaultReason = iota

	// FaultTimeout: consecutive transient failures exceeded the threshold.
	FaultTimeout

	// FaultIO: the driver reported a non-transient error.
	FaultIO
)

func (r FaultReason) String() string {
	switch r {
	case FaultNone:
		return "none"
	case FaultTimeout:
		return "IO_TIMEOUT"
	case FaultIO:
		return "IO_ERROR"
	default:
		return "UNKNOWN"
	}
}

// transitions lists the states each operation may start from.
var transitions = map[string][]State{
	"configure": {StateUninitialized},
	"start":     {StateReady, StateStopped},
	"update":    {StateRunning},
	"stop":      {StateRunning},
	"cleanup":   {StateReady, StateStopped, StateFaulted},
}

func allowed(op string, from State) bool {
	for _, s := range transitions[op] {
		if s == from {
			return true
		}
	}
	return false
}
