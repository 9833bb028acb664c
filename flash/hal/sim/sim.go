package sim

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/ardnew/flashlog/pkg"
)

// Chip geometry and identity of the emulated part (P25Q16SH).
const (
	DefaultSize  = 2 * 1024 * 1024
	DefaultJEDEC = 0x856015

	pageSize   = 256
	sectorSize = 4096
)

// Opcodes understood by the emulator.
const (
	cmdWriteEnable      = 0x06
	cmdWriteDisable     = 0x04
	cmdReadStatus       = 0x05
	cmdWriteStatus      = 0x01
	cmdPageProgram      = 0x02
	cmdReadData         = 0x03
	cmdSectorErase      = 0x20
	cmdChipErase        = 0xC7
	cmdPowerDown        = 0xB9
	cmdReleasePowerDown = 0xAB
	cmdReadID           = 0x9F
)

const (
	statusBusy = 0x01
	statusWEL  = 0x02
)

// OpKind identifies an array operation committed by the chip.
type OpKind int

// Committed operation kinds.
const (
	OpErase OpKind = iota
	OpProgram
	OpChipErase
	OpRead
)

// String returns the operation name.
func (k OpKind) String() string {
	switch k {
	case OpErase:
		return "erase"
	case OpProgram:
		return "program"
	case OpChipErase:
		return "chip-erase"
	case OpRead:
		return "read"
	default:
		return "unknown"
	}
}

// Op records one array operation.
type Op struct {
	Kind OpKind
	Addr uint32
	Size int
}

// Chip emulates a SPI NOR flash chip at the byte level.
//
// Chip implements both hal.Bus and hal.Pin: the chip-select edges delimit
// command frames exactly as on hardware. Erase and program commands take
// effect on the rising chip-select edge, require the write enable latch,
// and leave the chip busy for a configurable number of status polls.
// Programming only clears bits and wraps within the addressed page.
type Chip struct {
	mem       []byte
	jedec     uint32
	busyPolls int
	stuck     bool

	// Frame state
	selected bool
	pos      int
	hdr      [4]byte
	data     []byte

	// Device state
	wel       bool
	busy      int
	powerDown bool

	ops   []Op
	mutex sync.Mutex
}

// Option configures a Chip.
type Option func(*Chip)

// WithSize sets the array size in bytes, rounded up to a whole sector.
func WithSize(size int) Option {
	return func(c *Chip) {
		if size > 0 {
			size = (size + sectorSize - 1) &^ (sectorSize - 1)
			c.mem = make([]byte, size)
		}
	}
}

// WithJEDEC sets the id returned by the identify command.
// Zero emulates an unpopulated bus.
func WithJEDEC(id uint32) Option {
	return func(c *Chip) {
		c.jedec = id & 0xFFFFFF
	}
}

// WithBusyPolls sets how many status reads report busy after each erase or
// program.
func WithBusyPolls(n int) Option {
	return func(c *Chip) {
		if n >= 0 {
			c.busyPolls = n
		}
	}
}

// New creates an erased chip.
func New(opts ...Option) *Chip {
	c := &Chip{
		jedec:     DefaultJEDEC,
		busyPolls: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.mem == nil {
		c.mem = make([]byte, DefaultSize)
	}
	for i := range c.mem {
		c.mem[i] = 0xFF
	}
	return c
}

// Size returns the array size in bytes.
func (c *Chip) Size() int {
	return len(c.mem)
}

// SetStuck makes the busy bit stick after the next erase or program,
// emulating a dead chip.
func (c *Chip) SetStuck(stuck bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.stuck = stuck
}

// Ops returns the array operations committed so far.
func (c *Chip) Ops() []Op {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]Op(nil), c.ops...)
}

// ResetOps clears the operation log.
func (c *Chip) ResetOps() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.ops = c.ops[:0]
}

// Peek returns a copy of n bytes at addr without going through the bus.
func (c *Chip) Peek(addr uint32, n int) []byte {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	out := make([]byte, n)
	for i := range out {
		out[i] = c.mem[(int(addr)+i)%len(c.mem)]
	}
	return out
}

// Poke overwrites memory at addr without erase semantics. It is meant for
// seeding corrupt or legacy contents.
func (c *Chip) Poke(addr uint32, data []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for i, b := range data {
		c.mem[(int(addr)+i)%len(c.mem)] = b
	}
}

// Low asserts chip select and starts a new command frame.
func (c *Chip) Low() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.selected = true
	c.pos = 0
	c.data = c.data[:0]
}

// High releases chip select and commits the frame.
func (c *Chip) High() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.selected {
		return
	}
	c.selected = false
	c.commit()
}

// Tx exchanges len(w) or len(r) bytes. When both are given they must be
// the same length. Outside a chip-select frame the call is its own frame.
func (c *Chip) Tx(w, r []byte) error {
	if w != nil && r != nil && len(w) != len(r) {
		return errors.New("sim: tx buffers differ in length")
	}
	n := len(w)
	if w == nil {
		n = len(r)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	framed := c.selected
	if !framed {
		c.selected = true
		c.pos = 0
		c.data = c.data[:0]
	}
	for i := 0; i < n; i++ {
		var in byte
		if w != nil {
			in = w[i]
		}
		out := c.clock(in)
		if r != nil {
			r[i] = out
		}
	}
	if !framed {
		c.selected = false
		c.commit()
	}
	return nil
}

// Transfer exchanges a single byte.
func (c *Chip) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := c.Tx([]byte{b}, r[:])
	return r[0], err
}

// clock shifts one byte in and returns the byte shifted out.
func (c *Chip) clock(in byte) byte {
	pos := c.pos
	c.pos++

	if pos < len(c.hdr) {
		c.hdr[pos] = in
	}
	if pos == 0 {
		return 0xFF
	}

	cmd := c.hdr[0]
	if c.powerDown && cmd != cmdReleasePowerDown {
		return 0xFF
	}

	switch cmd {
	case cmdReadStatus:
		return c.status()
	case cmdReadID:
		switch pos {
		case 1:
			return byte(c.jedec >> 16)
		case 2:
			return byte(c.jedec >> 8)
		case 3:
			return byte(c.jedec)
		}
		return 0xFF
	case cmdReadData:
		if pos < 4 || c.busy != 0 {
			return 0xFF
		}
		return c.mem[(int(c.address())+pos-4)%len(c.mem)]
	case cmdPageProgram:
		if pos >= 4 {
			c.data = append(c.data, in)
		}
	}
	return 0xFF
}

func (c *Chip) status() byte {
	var s byte
	if c.busy != 0 {
		s |= statusBusy
		if c.busy > 0 {
			c.busy--
		}
	}
	if c.wel {
		s |= statusWEL
	}
	return s
}

func (c *Chip) address() uint32 {
	return uint32(c.hdr[1])<<16 | uint32(c.hdr[2])<<8 | uint32(c.hdr[3])
}

// commit applies the command of the frame that just ended.
func (c *Chip) commit() {
	if c.pos == 0 {
		return
	}
	cmd := c.hdr[0]

	if c.powerDown {
		if cmd == cmdReleasePowerDown {
			c.powerDown = false
		}
		return
	}
	if c.busy != 0 && cmd != cmdReadStatus {
		pkg.LogDebug(pkg.ComponentHAL, "sim: command ignored while busy", "cmd", cmd)
		return
	}

	switch cmd {
	case cmdWriteEnable:
		c.wel = true
	case cmdWriteDisable:
		c.wel = false
	case cmdPowerDown:
		c.powerDown = true
	case cmdReadData:
		if c.pos > 4 {
			c.ops = append(c.ops, Op{Kind: OpRead, Addr: c.address(), Size: c.pos - 4})
		}
	case cmdSectorErase:
		if !c.wel || c.pos != 4 {
			return
		}
		base := int(c.address()) % len(c.mem) &^ (sectorSize - 1)
		for i := base; i < base+sectorSize; i++ {
			c.mem[i] = 0xFF
		}
		c.ops = append(c.ops, Op{Kind: OpErase, Addr: uint32(base), Size: sectorSize})
		c.startBusy()
	case cmdChipErase:
		if !c.wel || c.pos != 1 {
			return
		}
		for i := range c.mem {
			c.mem[i] = 0xFF
		}
		c.ops = append(c.ops, Op{Kind: OpChipErase, Size: len(c.mem)})
		c.startBusy()
	case cmdPageProgram:
		if !c.wel || c.pos < 4 {
			return
		}
		addr := int(c.address()) % len(c.mem)
		page := addr &^ (pageSize - 1)
		off := addr - page
		data := c.data
		if len(data) > pageSize {
			data = data[len(data)-pageSize:]
		}
		for i, b := range data {
			c.mem[page+(off+i)%pageSize] &= b
		}
		c.ops = append(c.ops, Op{Kind: OpProgram, Addr: uint32(addr), Size: len(c.data)})
		c.startBusy()
	}
}

func (c *Chip) startBusy() {
	c.wel = false
	c.busy = c.busyPolls
	if c.stuck {
		c.busy = -1
	}
}

// Load replaces the array contents with the file at path. A missing file
// leaves the chip erased. Shorter files are padded with 0xFF.
func (c *Chip) Load(path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load flash image: %w", err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	n := copy(c.mem, b)
	for i := n; i < len(c.mem); i++ {
		c.mem[i] = 0xFF
	}
	pkg.LogDebug(pkg.ComponentHAL, "sim: image loaded", "path", path, "bytes", n)
	return nil
}

// Save writes the array contents to path.
func (c *Chip) Save(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := os.WriteFile(path, c.mem, 0o644); err != nil {
		return fmt.Errorf("save flash image: %w", err)
	}
	return nil
}
