// internal/probe/driver.go
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/goburrow/modbus"
)

// Assignable Modbus slave addresses. 0 is broadcast: reads never get a reply.
const (
	MinDeviceAddress = 1
	MaxDeviceAddress = 247
)

// ValidAddress reports whether address can be polled.
func ValidAddress(address int) bool {
	return address >= MinDeviceAddress && address <= MaxDeviceAddress
}

// DefaultReadTimeout bounds a single register read.
const DefaultReadTimeout = time.Second

// RegisterReader is the one Modbus operation the driver needs.
// modbus.Client satisfies it; hosts may attach their own link.
type RegisterReader interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
}

// Driver reads the probe register block over one Modbus link.
// A Driver is owned by exactly one task and is not safe for concurrent use.
type Driver struct {
	address byte
	timeout time.Duration
	logger  *log.Logger
	now     func() time.Time

	link   RegisterReader
	closer io.Closer
}

// Option configures a Driver.
type Option func(*Driver)

// WithReadTimeout sets the transport read timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(drv *Driver) {
		if d > 0 {
			drv.timeout = d
		}
	}
}

// WithLogger sets the logger handed to the modbus handler (frame dumps).
func WithLogger(l *log.Logger) Option {
	return func(drv *Driver) { drv.logger = l }
}

// WithClock overrides the clock used to stamp measurements.
func WithClock(now func() time.Time) Option {
	return func(drv *Driver) {
		if now != nil {
			drv.now = now
		}
	}
}

// NewDriver validates the device address and creates an unopened driver.
func NewDriver(address int, opts ...Option) (*Driver, error) {
	if !ValidAddress(address) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAddress, address)
	}

	d := &Driver{
		address: byte(address),
		timeout: DefaultReadTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Address returns the Modbus slave address.
func (d *Driver) Address() uint8 { return d.address }

// OpenURI connects the driver to the endpoint described by uri.
func (d *Driver) OpenURI(uri string) error {
	ep, err := ParseURI(uri)
	if err != nil {
		return err
	}

	switch ep.Kind {
	case KindSerial:
		h := modbus.NewRTUClientHandler(ep.Address)
		h.BaudRate = ep.BaudRate
		h.DataBits = ep.DataBits
		h.Parity = ep.Parity
		h.StopBits = ep.StopBits
		h.SlaveId = d.address
		h.Timeout = d.timeout
		h.Logger = d.logger

		if err := h.Connect(); err != nil {
			return fmt.Errorf("probe: open %s: %w", uri, err)
		}
		d.attach(modbus.NewClient(h), h)

	case KindTCP:
		h := modbus.NewTCPClientHandler(ep.Address)
		h.SlaveId = d.address
		h.Timeout = d.timeout
		h.Logger = d.logger

		if err := h.Connect(); err != nil {
			return fmt.Errorf("probe: open %s: %w", uri, err)
		}
		d.attach(modbus.NewClient(h), h)
	}

	return nil
}

// Attach uses a link provided by the host instead of opening a port.
// The driver does not close an attached link.
func (d *Driver) Attach(link RegisterReader) {
	d.attach(link, nil)
}

func (d *Driver) attach(link RegisterReader, closer io.Closer) {
	if d.closer != nil {
		_ = d.closer.Close()
	}
	d.link = link
	d.closer = closer
}

// Read performs one register block read and decodes it.
// Transient failures are returned as *TransientError.
func (d *Driver) Read(ctx context.Context) (Measurement, error) {
	if d.link == nil {
		return Measurement{}, ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return Measurement{}, err
	}

	raw, err := d.link.ReadHoldingRegisters(RegisterStart, RegisterCount)
	if err != nil {
		return Measurement{}, classify(err)
	}

	regs, err := unpackRegisters(raw)
	if err != nil {
		return Measurement{}, err
	}

	// Stamp with reception time.
	return Decode(regs, d.now()), nil
}

// Close releases the transport opened by OpenURI.
func (d *Driver) Close() error {
	if d == nil {
		return nil
	}
	d.link = nil
	if d.closer == nil {
		return nil
	}
	c := d.closer
	d.closer = nil
	if err := c.Close(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("probe: close: %w", err)
	}
	return nil
}
