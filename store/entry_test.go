package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/flashlog/pkg"
)

func TestEntrySize(t *testing.T) {
	if EntrySize != 296 {
		t.Errorf("EntrySize = %d, want 296", EntrySize)
	}
}

func TestFileEntryValid(t *testing.T) {
	valid := func() FileEntry { return NewFileEntry("log.txt", []byte("hello\n")) }

	tests := []struct {
		name   string
		mutate func(*FileEntry)
		want   bool
	}{
		{"valid", func(*FileEntry) {}, true},
		{"full payload", func(e *FileEntry) { e.Size = DataSize }, true},
		{"size zero", func(e *FileEntry) { e.Size = 0 }, false},
		{"size erased", func(e *FileEntry) { e.Size = 0xFFFFFFFF }, false},
		{"size too large", func(e *FileEntry) { e.Size = DataSize + 1 }, false},
		{"name empty", func(e *FileEntry) { e.Name[0] = 0x00 }, false},
		{"name erased", func(e *FileEntry) { e.Name[0] = 0xFF }, false},
		{"data erased", func(e *FileEntry) { e.Data[0] = 0xFF }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(&e)
			if got := e.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErasedEntryInvalid(t *testing.T) {
	var e FileEntry
	if err := e.UnmarshalBinary(bytes.Repeat([]byte{0xFF}, EntrySize)); err != nil {
		t.Fatalf("UnmarshalBinary() error = %v", err)
	}
	if e.Valid() {
		t.Error("Valid() = true for erased flash")
	}
}

func TestNewFileEntryTruncates(t *testing.T) {
	long := strings.Repeat("n", 40)
	e := NewFileEntry(long, bytes.Repeat([]byte{'d'}, 300))

	if got := e.FileName(); len(got) != NameSize-1 {
		t.Errorf("len(FileName()) = %d, want %d", len(got), NameSize-1)
	}
	if e.Name[NameSize-1] != 0 {
		t.Error("filename not NUL terminated")
	}
	if e.Size != DataSize {
		t.Errorf("Size = %d, want %d", e.Size, DataSize)
	}
	if e.Timestamp != 0 {
		t.Errorf("Timestamp = %d, want 0", e.Timestamp)
	}
}

func TestFileEntryLayout(t *testing.T) {
	e := NewFileEntry("a.txt", []byte("xyz"))
	b, err := e.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	if len(b) != EntrySize {
		t.Fatalf("len = %d, want %d", len(b), EntrySize)
	}
	if string(b[:6]) != "a.txt\x00" {
		t.Errorf("name field = %q", b[:6])
	}
	if got := binary.LittleEndian.Uint32(b[32:]); got != 3 {
		t.Errorf("size field = %d, want 3", got)
	}
	if got := binary.LittleEndian.Uint32(b[36:]); got != 0 {
		t.Errorf("timestamp field = %d, want 0", got)
	}
	if string(b[40:43]) != "xyz" || b[43] != 0 {
		t.Errorf("data field = % X", b[40:44])
	}

	var d FileEntry
	if err := d.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary() error = %v", err)
	}
	if d != e {
		t.Error("decoded entry differs from encoded entry")
	}
}

func TestUnmarshalShort(t *testing.T) {
	var e FileEntry
	if err := e.UnmarshalBinary(make([]byte, EntrySize-1)); !errors.Is(err, pkg.ErrBufferTooSmall) {
		t.Errorf("UnmarshalBinary() error = %v, want %v", err, pkg.ErrBufferTooSmall)
	}
}

func TestPayloadClamped(t *testing.T) {
	e := FileEntry{Size: 1000}
	if got := len(e.Payload()); got != DataSize {
		t.Errorf("len(Payload()) = %d, want %d", got, DataSize)
	}
}
