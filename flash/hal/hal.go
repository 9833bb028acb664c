package hal

import "tinygo.org/x/drivers"

// Bus is a full-duplex SPI bus.
//
// Tx transmits w and receives into r at the same time. When w is nil the
// bus clocks out zeros; when r is nil received bytes are discarded.
type Bus = drivers.SPI

// Pin is a digital output used as the flash chip select (active low).
type Pin interface {
	High()
	Low()
}

// NoPin is a Pin that does nothing. Use it when the bus asserts chip
// select on its own.
type NoPin struct{}

// High implements Pin.
func (NoPin) High() {}

// Low implements Pin.
func (NoPin) Low() {}
