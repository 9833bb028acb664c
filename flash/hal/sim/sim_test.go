package sim

import (
	"bytes"
	"path/filepath"
	"testing"
)

// frame runs one chip-select frame.
func frame(c *Chip, w []byte, rlen int) []byte {
	c.Low()
	defer c.High()
	_ = c.Tx(w, nil)
	if rlen == 0 {
		return nil
	}
	r := make([]byte, rlen)
	_ = c.Tx(nil, r)
	return r
}

func waitIdle(t *testing.T, c *Chip) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if frame(c, []byte{cmdReadStatus}, 1)[0]&statusBusy == 0 {
			return
		}
	}
	t.Fatal("chip stayed busy")
}

func TestNewChipErased(t *testing.T) {
	c := New(WithSize(8192))
	if c.Size() != 8192 {
		t.Fatalf("Size() = %d, want 8192", c.Size())
	}
	if got := c.Peek(0, 16); !bytes.Equal(got, bytes.Repeat([]byte{0xFF}, 16)) {
		t.Errorf("new chip not erased: % X", got)
	}
}

func TestWithSizeRoundsToSector(t *testing.T) {
	c := New(WithSize(5000))
	if c.Size() != 8192 {
		t.Errorf("Size() = %d, want 8192", c.Size())
	}
}

func TestReadID(t *testing.T) {
	tests := []struct {
		name string
		id   uint32
		want []byte
	}{
		{"default", DefaultJEDEC, []byte{0x85, 0x60, 0x15}},
		{"winbond", 0xEF4015, []byte{0xEF, 0x40, 0x15}},
		{"absent", 0, []byte{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(WithSize(4096), WithJEDEC(tt.id))
			if got := frame(c, []byte{cmdReadID}, 3); !bytes.Equal(got, tt.want) {
				t.Errorf("id = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestProgramRequiresWriteEnable(t *testing.T) {
	c := New(WithSize(4096))

	frame(c, []byte{cmdPageProgram, 0, 0, 0, 0x12}, 0)
	if got := c.Peek(0, 1)[0]; got != 0xFF {
		t.Errorf("program without WEL changed memory: 0x%02X", got)
	}
	if len(c.Ops()) != 0 {
		t.Errorf("Ops() = %v, want none", c.Ops())
	}

	frame(c, []byte{cmdWriteEnable}, 0)
	frame(c, []byte{cmdPageProgram, 0, 0, 0, 0x12}, 0)
	waitIdle(t, c)
	if got := c.Peek(0, 1)[0]; got != 0x12 {
		t.Errorf("memory = 0x%02X, want 0x12", got)
	}
}

func TestWriteEnableLatchClears(t *testing.T) {
	c := New(WithSize(4096), WithBusyPolls(0))

	frame(c, []byte{cmdWriteEnable}, 0)
	if s := frame(c, []byte{cmdReadStatus}, 1)[0]; s&statusWEL == 0 {
		t.Fatalf("status = 0x%02X, want WEL set", s)
	}
	frame(c, []byte{cmdPageProgram, 0, 0, 0, 0xAA}, 0)
	if s := frame(c, []byte{cmdReadStatus}, 1)[0]; s&statusWEL != 0 {
		t.Errorf("status = 0x%02X, want WEL clear after program", s)
	}

	frame(c, []byte{cmdWriteEnable}, 0)
	frame(c, []byte{cmdWriteDisable}, 0)
	if s := frame(c, []byte{cmdReadStatus}, 1)[0]; s&statusWEL != 0 {
		t.Errorf("status = 0x%02X, want WEL clear after write disable", s)
	}
}

func TestProgramOnlyClearsBits(t *testing.T) {
	c := New(WithSize(4096), WithBusyPolls(0))

	frame(c, []byte{cmdWriteEnable}, 0)
	frame(c, []byte{cmdPageProgram, 0, 0, 0, 0xF0}, 0)
	frame(c, []byte{cmdWriteEnable}, 0)
	frame(c, []byte{cmdPageProgram, 0, 0, 0, 0x3C}, 0)

	if got := c.Peek(0, 1)[0]; got != 0x30 {
		t.Errorf("memory = 0x%02X, want 0x30", got)
	}
}

func TestProgramWrapsWithinPage(t *testing.T) {
	c := New(WithSize(4096), WithBusyPolls(0))

	frame(c, []byte{cmdWriteEnable}, 0)
	frame(c, []byte{cmdPageProgram, 0, 0x00, 0xFE, 1, 2, 3, 4}, 0)

	if got := c.Peek(0xFE, 2); !bytes.Equal(got, []byte{1, 2}) {
		t.Errorf("page tail = % X, want 01 02", got)
	}
	if got := c.Peek(0x00, 2); !bytes.Equal(got, []byte{3, 4}) {
		t.Errorf("page head = % X, want 03 04 (wrapped)", got)
	}
	if got := c.Peek(0x100, 2); !bytes.Equal(got, []byte{0xFF, 0xFF}) {
		t.Errorf("next page = % X, want untouched", got)
	}
}

func TestSectorErase(t *testing.T) {
	c := New(WithSize(8192), WithBusyPolls(0))
	c.Poke(0x0FFF, []byte{0x00, 0x00})

	frame(c, []byte{cmdWriteEnable}, 0)
	frame(c, []byte{cmdSectorErase, 0, 0x01, 0x23}, 0)

	if got := c.Peek(0x0FFF, 2); !bytes.Equal(got, []byte{0xFF, 0x00}) {
		t.Errorf("after erase = % X, want FF 00", got)
	}
	ops := c.Ops()
	if len(ops) != 1 || ops[0].Kind != OpErase || ops[0].Addr != 0 {
		t.Errorf("Ops() = %v, want one erase at 0", ops)
	}
}

func TestBusyPolls(t *testing.T) {
	c := New(WithSize(4096), WithBusyPolls(3))

	frame(c, []byte{cmdWriteEnable}, 0)
	frame(c, []byte{cmdSectorErase, 0, 0, 0}, 0)

	busy := 0
	for frame(c, []byte{cmdReadStatus}, 1)[0]&statusBusy != 0 {
		busy++
		if busy > 10 {
			t.Fatal("busy never cleared")
		}
	}
	if busy != 3 {
		t.Errorf("busy polls = %d, want 3", busy)
	}
}

func TestStuckBusy(t *testing.T) {
	c := New(WithSize(4096))
	c.SetStuck(true)

	frame(c, []byte{cmdWriteEnable}, 0)
	frame(c, []byte{cmdSectorErase, 0, 0, 0}, 0)

	for i := 0; i < 50; i++ {
		if frame(c, []byte{cmdReadStatus}, 1)[0]&statusBusy == 0 {
			t.Fatal("stuck chip reported ready")
		}
	}
}

func TestReadData(t *testing.T) {
	c := New(WithSize(4096))
	c.Poke(0x10, []byte("hello"))

	if got := frame(c, []byte{cmdReadData, 0, 0, 0x10}, 5); string(got) != "hello" {
		t.Errorf("read = %q, want %q", got, "hello")
	}
	ops := c.Ops()
	if len(ops) != 1 || ops[0].Kind != OpRead || ops[0].Size != 5 {
		t.Errorf("Ops() = %v, want one 5-byte read", ops)
	}
}

func TestPowerDown(t *testing.T) {
	c := New(WithSize(4096))

	frame(c, []byte{cmdPowerDown}, 0)
	if got := frame(c, []byte{cmdReadID}, 3); !bytes.Equal(got, []byte{0xFF, 0xFF, 0xFF}) {
		t.Errorf("id while powered down = % X, want FF FF FF", got)
	}

	frame(c, []byte{cmdReleasePowerDown}, 0)
	if got := frame(c, []byte{cmdReadID}, 3); got[0] != 0x85 {
		t.Errorf("id after release = % X, want manufacturer 85", got)
	}
}

func TestTransferOutsideFrame(t *testing.T) {
	c := New(WithSize(4096))
	if _, err := c.Transfer(cmdWriteEnable); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if s := frame(c, []byte{cmdReadStatus}, 1)[0]; s&statusWEL == 0 {
		t.Errorf("status = 0x%02X, want WEL set by unframed transfer", s)
	}
}

func TestTxLengthMismatch(t *testing.T) {
	c := New(WithSize(4096))
	if err := c.Tx(make([]byte, 2), make([]byte, 3)); err == nil {
		t.Error("Tx() with mismatched buffers succeeded")
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.img")

	c := New(WithSize(4096))
	if err := c.Load(path); err != nil {
		t.Fatalf("Load(missing) error = %v", err)
	}
	c.Poke(0, []byte("persist"))
	if err := c.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	c2 := New(WithSize(8192))
	if err := c2.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c2.Peek(0, 7); string(got) != "persist" {
		t.Errorf("reloaded = %q, want %q", got, "persist")
	}
	if got := c2.Peek(4096, 1)[0]; got != 0xFF {
		t.Errorf("padding = 0x%02X, want 0xFF", got)
	}
}

func TestOpKindString(t *testing.T) {
	tests := []struct {
		kind OpKind
		want string
	}{
		{OpErase, "erase"},
		{OpProgram, "program"},
		{OpChipErase, "chip-erase"},
		{OpRead, "read"},
		{OpKind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("OpKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
