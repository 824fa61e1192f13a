// internal/status/constants.go
package status

// Device Status Block layout constants.
// These values define the mirrored block and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of registers per status block.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the probe health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last error code (see ErrorCode).
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the probe has not been healthy.
const SlotSecondsInError = 2

// SlotConsecutiveFailures holds the current consecutive transient failure count.
const SlotConsecutiveFailures = 3

// SlotMaxConsecutiveFailures holds the configured threshold.
const SlotMaxConsecutiveFailures = 4

// SlotTaskState holds the task state code.
const SlotTaskState = 5

// ---- RESERVED RANGE ----

// Slots 6-10 are reserved for future use.
const SlotReservedStart = 6
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// MaxSecondsInError caps the seconds counter; it never wraps.
const MaxSecondsInError = 65535

// ---- HEALTH CODES ----

// HealthUnknown represents a started task that has not completed a read yet.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy link.
const HealthOK uint16 = 1

// HealthError represents a faulted task.
const HealthError uint16 = 2

// HealthStale represents a running task inside a run of tolerated misses.
const HealthStale uint16 = 3

// HealthDisabled represents a task that is not running.
const HealthDisabled uint16 = 4

// ---- ERROR CODES ----

const (
	CodeNone      uint16 = 0
	CodeGeneric   uint16 = 1
	CodeTransient uint16 = 2
	CodeEscalated uint16 = 3

	// CodeModbusExceptionBase + exception code for device exceptions.
	CodeModbusExceptionBase uint16 = 0x100
)
