// Package i2cdev implements the sensor bus on a Linux i2c-dev character
// device (/dev/i2c-N).
//
// Every Tx is one I2C_RDWR request: an optional write message followed by
// an optional read message, joined by a repeated start. A Tx with neither
// buffer sends a zero-length write, which probes the address for an ACK.
//
//	bus, err := i2cdev.Open("/dev/i2c-1")
//	if err != nil {
//	    return err
//	}
//	defer bus.Close()
//	sensor := nst112.New(bus)
package i2cdev
