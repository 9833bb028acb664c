package store

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ardnew/flashlog/pkg"
)

// FileEntry field sizes.
const (
	NameSize = 32  // Filename field including the NUL terminator
	DataSize = 256 // Payload capacity

	// EntrySize is the encoded size of a FileEntry in flash.
	EntrySize = NameSize + 4 + 4 + DataSize
)

// Field offsets within an encoded entry.
const (
	offName      = 0
	offSize      = offName + NameSize
	offTimestamp = offSize + 4
	offData      = offTimestamp + 4
)

// sizeErased is the size field of an erased entry.
const sizeErased = 0xFFFFFFFF

// FileEntry is the record persisted at the store address.
//
// Layout (little-endian):
//
//	0x000  filename[32]  NUL-terminated, at most 31 characters
//	0x020  size          u32, valid bytes in data
//	0x024  timestamp     u32, reserved, written as 0
//	0x028  data[256]
type FileEntry struct {
	Name      [NameSize]byte
	Size      uint32
	Timestamp uint32
	Data      [DataSize]byte
}

// NewFileEntry builds an entry for name and data. The name is truncated to
// 31 characters and data to DataSize bytes. Unused bytes are zero.
func NewFileEntry(name string, data []byte) FileEntry {
	var e FileEntry
	copy(e.Name[:NameSize-1], name)
	if len(data) > DataSize {
		data = data[:DataSize]
	}
	e.Size = uint32(copy(e.Data[:], data))
	return e
}

// Valid reports whether the entry holds a file.
//
// The check is a sentinel heuristic, not a checksum: size must be in
// (0, DataSize], and neither the first filename byte nor the first data
// byte may look erased (0xFF) or empty (filename NUL).
func (e *FileEntry) Valid() bool {
	switch {
	case e.Size == 0, e.Size == sizeErased, e.Size > DataSize:
		return false
	case e.Name[0] == 0x00, e.Name[0] == 0xFF:
		return false
	case e.Data[0] == 0xFF:
		return false
	}
	return true
}

// FileName returns the filename up to the first NUL.
func (e *FileEntry) FileName() string {
	name := e.Name[:NameSize-1]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return string(name)
}

// Payload returns the valid data bytes. The size is clamped to DataSize.
func (e *FileEntry) Payload() []byte {
	n := e.Size
	if n > DataSize {
		n = DataSize
	}
	return e.Data[:n]
}

// MarshalBinary encodes the entry into its flash layout.
func (e *FileEntry) MarshalBinary() ([]byte, error) {
	buf := make([]byte, EntrySize)
	e.encode(buf)
	return buf, nil
}

// UnmarshalBinary decodes an entry from its flash layout.
func (e *FileEntry) UnmarshalBinary(b []byte) error {
	if len(b) < EntrySize {
		return fmt.Errorf("decode entry: %d bytes: %w", len(b), pkg.ErrBufferTooSmall)
	}
	copy(e.Name[:], b[offName:offSize])
	e.Size = binary.LittleEndian.Uint32(b[offSize:])
	e.Timestamp = binary.LittleEndian.Uint32(b[offTimestamp:])
	copy(e.Data[:], b[offData:EntrySize])
	return nil
}

func (e *FileEntry) encode(buf []byte) {
	copy(buf[offName:offSize], e.Name[:])
	binary.LittleEndian.PutUint32(buf[offSize:], e.Size)
	binary.LittleEndian.PutUint32(buf[offTimestamp:], e.Timestamp)
	copy(buf[offData:EntrySize], e.Data[:])
}
