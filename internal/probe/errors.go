// internal/probe/errors.go
package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"strings"
)

var (
	// ErrInvalidAddress is returned for device addresses outside 1..247.
	ErrInvalidAddress = errors.New("probe: invalid device address")

	// ErrNotOpen is returned by Read when no link is attached.
	ErrNotOpen = errors.New("probe: link not open")

	// ErrShortResponse marks a register payload smaller than the block.
	ErrShortResponse = errors.New("probe: undersized response")
)

// TransientError wraps a read failure that is expected under normal
// operation (timeout, undersized reply). Anything else is fatal.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "probe: transient read failure: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err belongs to the transient class.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// classify wraps transport errors that belong to the transient class.
// The modbus and serial packages report most conditions as plain strings,
// so the message is inspected as a last resort.
func classify(err error) error {
	if err == nil || IsTransient(err) {
		return err
	}
	if isTimeout(err) || isUndersized(err) {
		return &TransientError{Err: err}
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	// goburrow/serial: "serial: timeout"
	return strings.Contains(err.Error(), "timeout")
}

func isUndersized(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, ErrShortResponse) {
		return true
	}
	msg := err.Error()
	// goburrow/modbus length checks
	return strings.Contains(msg, "does not meet minimum") ||
		strings.Contains(msg, "does not match count")
}
