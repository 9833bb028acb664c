package flash

import (
	"context"
	"fmt"
	"time"

	"github.com/ardnew/flashlog/flash/hal"
	"github.com/ardnew/flashlog/pkg"
)

// Device drives a SPI NOR flash chip.
//
// Every destructive operation verifies the chip identity first and
// sequences write-enable before the erase or program command, then waits
// for the busy bit to clear. Device is not safe for concurrent use; the
// caller owns the bus for the duration of each call.
type Device struct {
	tr     *Transport
	config Config

	idBuf     [3]byte
	statusBuf [1]byte
}

// New creates a Device on bus with the given chip select and options.
func New(bus hal.Bus, cs hal.Pin, opts ...Option) *Device {
	if bus == nil {
		panic("bus cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Device{
		tr:     NewTransport(bus, cs),
		config: cfg,
	}
}

// Config returns the device configuration.
func (d *Device) Config() Config {
	return d.config
}

// ReadID issues the identify command and returns the 24-bit JEDEC id
// (manufacturer, memory type, capacity).
func (d *Device) ReadID() (uint32, error) {
	if err := d.tr.Command(CmdReadID, nil, d.idBuf[:]); err != nil {
		return 0, fmt.Errorf("read id: %w", err)
	}
	return uint32(d.idBuf[0])<<16 | uint32(d.idBuf[1])<<8 | uint32(d.idBuf[2]), nil
}

// CheckID reports whether id belongs to the expected part family.
func (d *Device) CheckID(id uint32) bool {
	return classifyID(id, d.config.Manufacturer) == nil
}

// Check reads the id and classifies it. The returned error is an *IDError
// wrapping pkg.ErrNoFlash or pkg.ErrWrongPart, or a bus error.
func (d *Device) Check() (uint32, error) {
	id, err := d.ReadID()
	if err != nil {
		return 0, err
	}
	if err := classifyID(id, d.config.Manufacturer); err != nil {
		pkg.LogDebug(pkg.ComponentFlash, "id check failed",
			"id", fmt.Sprintf("0x%06X", id),
			"error", err)
		return id, err
	}
	return id, nil
}

// ReadStatus returns the status register.
func (d *Device) ReadStatus() (uint8, error) {
	if err := d.tr.Command(CmdReadStatus, nil, d.statusBuf[:]); err != nil {
		return 0, fmt.Errorf("read status: %w", err)
	}
	return d.statusBuf[0], nil
}

// WaitReady polls the status register until the busy bit clears.
// It gives up after the configured retry budget with pkg.ErrTimeout, or
// earlier if ctx is cancelled.
func (d *Device) WaitReady(ctx context.Context) error {
	for i := 0; i < d.config.ReadyRetries; i++ {
		status, err := d.ReadStatus()
		if err != nil {
			return err
		}
		if status&StatusBusy == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.config.PollInterval > 0 {
			time.Sleep(d.config.PollInterval)
		}
	}
	pkg.LogWarn(pkg.ComponentFlash, "flash busy past retry budget",
		"retries", d.config.ReadyRetries)
	return pkg.ErrTimeout
}

// WriteEnable sets the write enable latch.
func (d *Device) WriteEnable() error {
	return d.tr.Command(CmdWriteEnable, nil, nil)
}

// WriteDisable clears the write enable latch.
func (d *Device) WriteDisable() error {
	return d.tr.Command(CmdWriteDisable, nil, nil)
}

// SectorErase erases the whole 4 KiB sector containing addr.
func (d *Device) SectorErase(ctx context.Context, addr uint32) error {
	if addr >= AddressLimit {
		return pkg.ErrAddressRange
	}
	if _, err := d.Check(); err != nil {
		return err
	}

	if err := d.enableAndWait(ctx); err != nil {
		return fmt.Errorf("erase sector 0x%06X: %w", addr, err)
	}
	if err := d.tr.AddressCommand(CmdSectorErase, addr, nil, nil); err != nil {
		return fmt.Errorf("erase sector 0x%06X: %w", addr, err)
	}
	if err := d.WaitReady(ctx); err != nil {
		return fmt.Errorf("erase sector 0x%06X: %w", addr, err)
	}

	pkg.LogDebug(pkg.ComponentFlash, "sector erased",
		"addr", fmt.Sprintf("0x%06X", addr&^(SectorSize-1)))
	return nil
}

// ChipErase erases the entire array.
func (d *Device) ChipErase(ctx context.Context) error {
	if _, err := d.Check(); err != nil {
		return err
	}
	if err := d.enableAndWait(ctx); err != nil {
		return fmt.Errorf("chip erase: %w", err)
	}
	if err := d.tr.Command(CmdChipErase, nil, nil); err != nil {
		return fmt.Errorf("chip erase: %w", err)
	}
	if err := d.WaitReady(ctx); err != nil {
		return fmt.Errorf("chip erase: %w", err)
	}
	pkg.LogInfo(pkg.ComponentFlash, "chip erased")
	return nil
}

// PageProgram programs data at addr and returns the number of bytes
// programmed. At most PageSize bytes are taken, and never past the end of
// the page containing addr; use Write for longer buffers.
func (d *Device) PageProgram(ctx context.Context, addr uint32, data []byte) (int, error) {
	if _, err := d.Check(); err != nil {
		return 0, err
	}
	return d.programPage(ctx, addr, data)
}

// Write programs data starting at addr, split into page-bounded
// PageProgram transactions. The target range must already be erased.
func (d *Device) Write(ctx context.Context, addr uint32, data []byte) error {
	if uint64(addr)+uint64(len(data)) > AddressLimit {
		return pkg.ErrAddressRange
	}
	if _, err := d.Check(); err != nil {
		return err
	}

	for _, c := range PageChunks(addr, len(data)) {
		if _, err := d.programPage(ctx, c.Addr, data[c.Offset:c.Offset+c.Size]); err != nil {
			return err
		}
	}
	return nil
}

// Read reads len(buf) bytes starting at addr. Reads have no page limit and
// wrap at the end of the array as the chip does.
func (d *Device) Read(addr uint32, buf []byte) error {
	if addr >= AddressLimit {
		return pkg.ErrAddressRange
	}
	if len(buf) == 0 {
		return nil
	}
	if err := d.tr.AddressCommand(CmdReadData, addr, nil, buf); err != nil {
		return fmt.Errorf("read 0x%06X+%d: %w", addr, len(buf), err)
	}
	return nil
}

// PowerDown puts the chip into deep power down. Only ReleasePowerDown is
// accepted afterwards.
func (d *Device) PowerDown() error {
	return d.tr.Command(CmdPowerDown, nil, nil)
}

// ReleasePowerDown wakes the chip from deep power down.
func (d *Device) ReleasePowerDown() error {
	return d.tr.Command(CmdReleasePowerDown, nil, nil)
}

func (d *Device) programPage(ctx context.Context, addr uint32, data []byte) (int, error) {
	if addr >= AddressLimit {
		return 0, pkg.ErrAddressRange
	}
	if room := PageSize - int(addr%PageSize); len(data) > room {
		data = data[:room]
	}
	if len(data) == 0 {
		return 0, nil
	}

	if err := d.enableAndWait(ctx); err != nil {
		return 0, fmt.Errorf("program 0x%06X: %w", addr, err)
	}
	if err := d.tr.AddressCommand(CmdPageProgram, addr, data, nil); err != nil {
		return 0, fmt.Errorf("program 0x%06X: %w", addr, err)
	}
	if err := d.WaitReady(ctx); err != nil {
		return 0, fmt.Errorf("program 0x%06X: %w", addr, err)
	}

	pkg.LogDebug(pkg.ComponentFlash, "page programmed",
		"addr", fmt.Sprintf("0x%06X", addr),
		"size", len(data))
	return len(data), nil
}

func (d *Device) enableAndWait(ctx context.Context) error {
	if err := d.WriteEnable(); err != nil {
		return err
	}
	return d.WaitReady(ctx)
}

// Chunk is one page-bounded slice of a longer write.
type Chunk struct {
	Addr   uint32 // Flash address of the first byte
	Offset int    // Offset into the source buffer
	Size   int    // Number of bytes, never crossing a page boundary
}

// PageChunks splits a write of n bytes at addr into chunks that each stay
// within a single page. The first chunk is shortened to the distance from
// addr to the next page boundary.
func PageChunks(addr uint32, n int) []Chunk {
	var chunks []Chunk
	for off := 0; off < n; {
		space := PageSize - int(addr%PageSize)
		size := n - off
		if size > space {
			size = space
		}
		chunks = append(chunks, Chunk{Addr: addr, Offset: off, Size: size})
		addr += uint32(size)
		off += size
	}
	return chunks
}
