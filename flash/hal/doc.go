// Package hal defines the hardware interface consumed by the flash transport.
//
// The flash packages only need two things from the platform: a full-duplex
// SPI bus and a chip-select output. The bus type is [drivers.SPI] from
// tinygo.org/x/drivers, which machine.SPI satisfies on TinyGo targets, so
// firmware builds pass the peripheral directly:
//
//	dev := flash.New(machine.SPI1, csPin)
//
// Host-side implementations live in subpackages:
//
//   - [github.com/ardnew/flashlog/flash/hal/sim] emulates a NOR chip in memory
//   - [github.com/ardnew/flashlog/flash/hal/spidev] drives a Linux spidev node
//
// # Chip Select
//
// Every flash command is one chip-select frame. The transport calls
// [Pin.Low] before the first byte and [Pin.High] after the last. Buses that
// frame transactions themselves (spidev) implement [Pin] too, and use the
// Low/High calls as transaction boundaries.
package hal
