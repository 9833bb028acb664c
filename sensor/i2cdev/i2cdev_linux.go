//go:build linux

package i2cdev

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ardnew/flashlog/pkg"
)

// MaxAddress is the largest 7-bit target address.
const MaxAddress = 0x7F

// Device is an open i2c-dev adapter.
type Device struct {
	fd   int
	path string

	mutex sync.Mutex
}

// Open opens the adapter at path.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	pkg.LogDebug(pkg.ComponentHAL, "i2c-dev opened", "path", path)
	return &Device{fd: fd, path: path}, nil
}

// Close closes the adapter.
func (d *Device) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

// Tx writes w to the target at addr and then reads len(r) bytes back.
func (d *Device) Tx(addr uint16, w, r []byte) error {
	if addr > MaxAddress {
		return fmt.Errorf("i2c address 0x%X: %w", addr, pkg.ErrInvalidParameter)
	}
	msgs := buildMessages(addr, w, r)

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.fd < 0 {
		return fmt.Errorf("i2c-dev %s: %w", d.path, unix.EBADF)
	}

	data := rdwrData{
		msgs:  uintptr(unsafe.Pointer(&msgs[0])),
		nmsgs: uint32(len(msgs)),
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), i2cRdwr, uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(msgs)
	runtime.KeepAlive(w)
	runtime.KeepAlive(r)
	if errno != 0 {
		pkg.LogDebug(pkg.ComponentHAL, "i2c transfer failed",
			"path", d.path,
			"addr", addr,
			"error", errno)
		return fmt.Errorf("i2c-dev %s addr 0x%02X: %w", d.path, addr, errno)
	}
	return nil
}

// ReadRegister reads len(buf) bytes starting at register reg.
func (d *Device) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return d.Tx(uint16(addr), []byte{reg}, buf)
}

// WriteRegister writes buf starting at register reg.
func (d *Device) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return d.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

// buildMessages converts one Tx into I2C_RDWR messages.
func buildMessages(addr uint16, w, r []byte) []i2cMsg {
	msgs := make([]i2cMsg, 0, 2)
	if len(w) > 0 || len(r) == 0 {
		m := i2cMsg{addr: addr, length: uint16(len(w))}
		if len(w) > 0 {
			m.buf = uintptr(unsafe.Pointer(&w[0]))
		}
		msgs = append(msgs, m)
	}
	if len(r) > 0 {
		msgs = append(msgs, i2cMsg{
			addr:   addr,
			flags:  i2cMRd,
			length: uint16(len(r)),
			buf:    uintptr(unsafe.Pointer(&r[0])),
		})
	}
	return msgs
}
