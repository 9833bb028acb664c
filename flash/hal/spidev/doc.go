// Package spidev implements the flash bus on a Linux spidev character
// device (/dev/spidevB.C).
//
// A [Device] is both the bus and its chip select. Transfers issued between
// Low and High are queued and submitted together as one SPI_IOC_MESSAGE, so
// the kernel holds chip select asserted for the whole command frame. Receive
// buffers are filled when High submits the frame. A failed submission fills
// them with 0xFF, which the flash layer reads as an absent chip, and the
// error is returned by the next Tx or by [Device.Err].
//
//	bus, err := spidev.Open("/dev/spidev0.0", spidev.WithSpeed(8000000))
//	if err != nil {
//	    return err
//	}
//	defer bus.Close()
//	dev := flash.New(bus, bus)
package spidev
