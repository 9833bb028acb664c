package store

import "fmt"

// Status tells how a Snapshot was produced.
type Status int

// Snapshot statuses.
const (
	StatusOK        Status = iota // Entry read and valid
	StatusNoFlash                 // Chip did not answer
	StatusWrongPart               // Unexpected manufacturer id
	StatusBadEntry                // Entry erased or corrupt
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoFlash:
		return "no flash"
	case StatusWrongPart:
		return "wrong part"
	case StatusBadEntry:
		return "bad entry"
	default:
		return "unknown"
	}
}

// Fallback file names.
const (
	NoFlashName   = "NOFLASH.TXT"
	WrongPartName = "JEDEC.TXT"
	BadEntryName  = "BADFILE.TXT"
)

// BadEntryText is the payload served for an invalid entry.
const BadEntryText = "ERR: Bad FileEntry"

// Snapshot is a copy of the stored file taken at one point in time.
type Snapshot struct {
	Name   string
	Data   []byte
	Status Status
	ID     uint32 // JEDEC id read during the load
}

// Size returns the file size in bytes.
func (s Snapshot) Size() int {
	return len(s.Data)
}

func noFlashSnapshot(id uint32) Snapshot {
	return Snapshot{
		Name:   NoFlashName,
		Data:   fmt.Appendf(nil, "SPI NO RESP, JEDEC=0x%06X\r\n", id),
		Status: StatusNoFlash,
		ID:     id,
	}
}

func wrongPartSnapshot(id uint32) Snapshot {
	return Snapshot{
		Name:   WrongPartName,
		Data:   fmt.Appendf(nil, "JEDEC=0x%06X (unsupported part)\r\n", id),
		Status: StatusWrongPart,
		ID:     id,
	}
}

func badEntrySnapshot(id uint32) Snapshot {
	return Snapshot{
		Name:   BadEntryName,
		Data:   []byte(BadEntryText),
		Status: StatusBadEntry,
		ID:     id,
	}
}
