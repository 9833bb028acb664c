package nst112

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"

	"github.com/ardnew/flashlog/pkg"
)

// Address is the default 7-bit bus address (ADD0 tied to ground).
const Address = 0x48

// Register pointers.
const (
	RegTemperature = 0x00
	RegConfig      = 0x01
)

// Read status codes. Zero means success; the others identify the bus phase
// that failed.
const (
	StatusOK          = 0
	StatusAddressNACK = 3 // Address (write) not acknowledged
	StatusPointerNACK = 4 // Register pointer not acknowledged
	StatusReadNACK    = 5 // Address (read) not acknowledged
)

// Error reports a failed temperature read.
type Error struct {
	Status int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("nst112 read failed, rc=%d: %v", e.Status, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Device wraps an I2C connection to an NST112.
type Device struct {
	bus     drivers.I2C
	Address uint16

	buf [2]byte
}

// New creates a device on bus at the default address.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
	}
}

// Connected probes the address and reports whether the sensor answers.
func (d *Device) Connected() bool {
	return d.bus.Tx(d.Address, nil, nil) == nil
}

// ReadQ4 reads the temperature in Q4 fixed point. The error is an *Error
// carrying the status code of the failed phase.
func (d *Device) ReadQ4() (int16, error) {
	if err := d.bus.Tx(d.Address, nil, nil); err != nil {
		return 0, d.fail(StatusAddressNACK, err)
	}
	d.buf[0] = RegTemperature
	if err := d.bus.Tx(d.Address, d.buf[:1], nil); err != nil {
		return 0, d.fail(StatusPointerNACK, err)
	}
	if err := d.bus.Tx(d.Address, nil, d.buf[:2]); err != nil {
		return 0, d.fail(StatusReadNACK, err)
	}
	return ConvertQ4(d.buf[0], d.buf[1]), nil
}

// ReadTempQ4 reads the temperature in Q4 fixed point and returns it with a
// status code, StatusOK on success.
func (d *Device) ReadTempQ4() (int16, int) {
	q4, err := d.ReadQ4()
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return 0, e.Status
		}
		return 0, StatusAddressNACK
	}
	return q4, StatusOK
}

// ReadTemperature returns the temperature in milli-degrees Celsius.
func (d *Device) ReadTemperature() (int32, error) {
	q4, err := d.ReadQ4()
	if err != nil {
		return 0, err
	}
	return int32(q4) * 625 / 10, nil
}

func (d *Device) fail(status int, err error) error {
	pkg.LogDebug(pkg.ComponentSensor, "temperature read failed",
		"addr", fmt.Sprintf("0x%02X", d.Address),
		"rc", status,
		"error", err)
	return &Error{Status: status, Err: err}
}

// ConvertQ4 converts the two temperature register bytes to Q4 fixed point.
// The 12-bit value is left aligned and sign extended from bit 11.
func ConvertQ4(msb, lsb byte) int16 {
	raw := uint16(msb)<<8 | uint16(lsb)
	return int16(raw) >> 4
}
