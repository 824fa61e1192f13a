// internal/status/encode.go
package status

import (
	"errors"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/water-probe-monitor/internal/monitor"
	"github.com/tamzrod/water-probe-monitor/internal/probe"
)

// Encode converts a Snapshot into the live slots of a status block.
// Device name slots are left zero; the writer owns them.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError
	regs[SlotConsecutiveFailures] = clampU16(s.ConsecutiveFailures)
	regs[SlotMaxConsecutiveFailures] = clampU16(s.MaxConsecutiveFailures)
	regs[SlotTaskState] = s.StateCode

	return regs
}

// ErrorCode extracts a best-effort uint16 code from an error.
// Device exceptions keep their exception code; unknown errors map to CodeGeneric.
func ErrorCode(err error) uint16 {
	if err == nil {
		return CodeNone
	}

	if errors.Is(err, monitor.ErrEscalated) {
		return CodeEscalated
	}

	var me *modbus.ModbusError
	if errors.As(err, &me) {
		return CodeModbusExceptionBase + uint16(me.ExceptionCode)
	}

	if probe.IsTransient(err) {
		return CodeTransient
	}

	return CodeGeneric
}

func clampU16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}
