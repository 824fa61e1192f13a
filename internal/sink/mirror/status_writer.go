// internal/sink/mirror/status_writer.go
package mirror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/water-probe-monitor/internal/status"
)

// StatusPlan places the status block inside the mirror.
type StatusPlan struct {
	UnitID     uint8
	Slot       uint16
	DeviceName string
}

// StatusWriter is the delivery-only writer for the probe status block.
// It receives a snapshot and writes it verbatim.
type StatusWriter struct {
	plan StatusPlan
	cli  registerWriter

	needFull bool
	last     []uint16
	nameRegs []uint16
}

// liveSlots are rewritten individually when they change.
var liveSlots = []int{
	status.SlotHealthCode,
	status.SlotLastErrorCode,
	status.SlotSecondsInError,
	status.SlotConsecutiveFailures,
	status.SlotMaxConsecutiveFailures,
	status.SlotTaskState,
}

func NewStatusWriter(cli registerWriter, plan StatusPlan) *StatusWriter {
	return &StatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		nameRegs: encodeDeviceNameRegs(plan.DeviceName),
	}
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next call re-asserts the full block.
func (sw *StatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.cli == nil {
		return errors.New("status writer: disabled")
	}

	regs := status.Encode(s)
	base := sw.baseAddr()

	if sw.needFull {
		for i := 0; i < status.SlotDeviceNameSlots; i++ {
			regs[status.SlotDeviceNameStart+i] = sw.nameRegs[i]
		}

		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base, regs); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = regs
		return nil
	}

	var errs []string
	for _, slot := range liveSlots {
		if sw.last[slot] == regs[slot] {
			continue
		}
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base+uint16(slot), []uint16{regs[slot]}); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", slot, err))
			continue
		}
		sw.last[slot] = regs[slot]
	}

	if len(errs) > 0 {
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}
	return nil
}

// Invalidate forces the next write to re-assert the whole block.
func (sw *StatusWriter) Invalidate() {
	sw.needFull = true
}

func (sw *StatusWriter) baseAddr() uint16 {
	// Each slot owns a fixed SlotsPerDevice block.
	return sw.plan.Slot * status.SlotsPerDevice
}

// encodeDeviceNameRegs packs up to 16 ASCII characters into 8 registers.
// Each register stores two ASCII bytes in big-endian order.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, status.SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > status.DeviceNameMaxChars {
		b = b[:status.DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := range b {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < status.DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
