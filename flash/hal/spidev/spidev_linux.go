//go:build linux && (amd64 || 386 || arm || arm64 || riscv64)

package spidev

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ardnew/flashlog/pkg"
)

// SPI clock modes.
const (
	Mode0 = 0x00 // CPOL=0, CPHA=0
	Mode1 = 0x01 // CPOL=0, CPHA=1
	Mode2 = 0x02 // CPOL=1, CPHA=0
	Mode3 = 0x03 // CPOL=1, CPHA=1
)

// DefaultSpeed is the default SPI clock in Hz.
const DefaultSpeed = 1000000

// Config holds the bus configuration applied on Open.
type Config struct {
	Mode        uint8
	BitsPerWord uint8
	SpeedHz     uint32
}

func defaultConfig() Config {
	return Config{
		Mode:        Mode0,
		BitsPerWord: 8,
		SpeedHz:     DefaultSpeed,
	}
}

// Option configures a Device.
type Option func(*Config)

// WithMode sets the SPI clock mode.
func WithMode(mode uint8) Option {
	return func(c *Config) {
		c.Mode = mode & 0x03
	}
}

// WithSpeed sets the SPI clock in Hz.
func WithSpeed(hz uint32) Option {
	return func(c *Config) {
		if hz > 0 {
			c.SpeedHz = hz
		}
	}
}

// WithBitsPerWord sets the word size.
func WithBitsPerWord(bits uint8) Option {
	return func(c *Config) {
		if bits > 0 {
			c.BitsPerWord = bits
		}
	}
}

// segment is one queued Tx call.
type segment struct {
	w, r []byte
	n    int
}

// Device is an open spidev character device.
type Device struct {
	fd     int
	path   string
	config Config

	selected bool
	queue    []segment
	err      error

	mutex sync.Mutex
}

// Open opens the spidev device at path and applies the configuration.
func Open(path string, opts ...Option) (*Device, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	d := &Device{fd: fd, path: path, config: cfg}
	if err := d.configure(); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("configure %s: %w", path, err)
	}

	pkg.LogDebug(pkg.ComponentHAL, "spidev opened",
		"path", path,
		"mode", cfg.Mode,
		"speed", cfg.SpeedHz)
	return d, nil
}

func (d *Device) configure() error {
	mode := d.config.Mode
	if err := ioctlPtr(d.fd, spiIOCWrMode, unsafe.Pointer(&mode)); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}
	bits := d.config.BitsPerWord
	if err := ioctlPtr(d.fd, spiIOCWrBitsPerWord, unsafe.Pointer(&bits)); err != nil {
		return fmt.Errorf("set bits per word: %w", err)
	}
	speed := d.config.SpeedHz
	if err := ioctlPtr(d.fd, spiIOCWrMaxSpeedHz, unsafe.Pointer(&speed)); err != nil {
		return fmt.Errorf("set speed: %w", err)
	}
	return nil
}

// Config returns the applied configuration.
func (d *Device) Config() Config {
	return d.config
}

// Close closes the device.
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

// Low starts a chip-select frame. Subsequent Tx calls are queued.
func (d *Device) Low() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.selected = true
	d.queue = d.queue[:0]
}

// High submits the queued frame as one message and releases chip select.
func (d *Device) High() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if !d.selected {
		return
	}
	d.selected = false
	if err := d.flush(); err != nil {
		d.err = err
	}
}

// Err returns and clears the error of the last failed frame submission.
func (d *Device) Err() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	err := d.err
	d.err = nil
	return err
}

// Tx exchanges len(w) or len(r) bytes. Inside a frame the exchange is
// queued until High; otherwise it is submitted immediately.
func (d *Device) Tx(w, r []byte) error {
	if w != nil && r != nil && len(w) != len(r) {
		return fmt.Errorf("spidev: tx buffers differ in length: %w", pkg.ErrInvalidParameter)
	}
	n := len(w)
	if w == nil {
		n = len(r)
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := d.err; err != nil {
		d.err = nil
		return err
	}
	if n == 0 {
		return nil
	}

	d.queue = append(d.queue, segment{w: w, r: r, n: n})
	if d.selected && len(d.queue) < maxTransfers {
		return nil
	}
	return d.flush()
}

// Transfer exchanges a single byte. The queued frame is submitted at once
// so the received byte can be returned.
func (d *Device) Transfer(b byte) (byte, error) {
	var r [1]byte
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.queue = append(d.queue, segment{w: []byte{b}, r: r[:], n: 1})
	err := d.flush()
	return r[0], err
}

// flush submits the queue as one SPI_IOC_MESSAGE.
func (d *Device) flush() error {
	if len(d.queue) == 0 {
		return nil
	}
	segs := d.queue
	d.queue = d.queue[:0]

	if d.fd < 0 {
		fillReceive(segs)
		return fmt.Errorf("spidev %s: %w", d.path, unix.EBADF)
	}

	xfers := buildTransfers(segs)
	err := ioctlPtr(d.fd, spiIOCMessage(len(xfers)), unsafe.Pointer(&xfers[0]))
	runtime.KeepAlive(segs)
	if err != nil {
		fillReceive(segs)
		pkg.LogError(pkg.ComponentHAL, "spidev message failed",
			"path", d.path,
			"transfers", len(xfers),
			"error", err)
		return fmt.Errorf("spidev %s: %w", d.path, err)
	}
	return nil
}

// buildTransfers converts queued segments to kernel transfer descriptors.
func buildTransfers(segs []segment) []iocTransfer {
	xfers := make([]iocTransfer, len(segs))
	for i, s := range segs {
		xfers[i].length = uint32(s.n)
		if len(s.w) > 0 {
			xfers[i].txBuf = uint64(uintptr(unsafe.Pointer(&s.w[0])))
		}
		if len(s.r) > 0 {
			xfers[i].rxBuf = uint64(uintptr(unsafe.Pointer(&s.r[0])))
		}
	}
	return xfers
}

// fillReceive marks the receive buffers of a failed frame as floating.
func fillReceive(segs []segment) {
	for _, s := range segs {
		for i := range s.r {
			s.r[i] = 0xFF
		}
	}
}

func ioctlPtr(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
