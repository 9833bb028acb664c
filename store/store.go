package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardnew/flashlog/pkg"
)

// Flash is the subset of the flash command layer used by the store.
// *flash.Device implements it.
type Flash interface {
	Check() (uint32, error)
	Read(addr uint32, buf []byte) error
	SectorErase(ctx context.Context, addr uint32) error
	Write(ctx context.Context, addr uint32, data []byte) error
}

// Store keeps a single FileEntry at a fixed flash address.
//
// Every mutation erases the sector holding the entry and programs the whole
// encoded entry again; the last successful erase and program wins. Store
// serializes its own calls but does not share the flash bus with others.
type Store struct {
	dev    Flash
	config Config

	buf   [EntrySize]byte
	mutex sync.Mutex
}

// New creates a Store over dev.
func New(dev Flash, opts ...Option) *Store {
	if dev == nil {
		panic("flash device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{dev: dev, config: cfg}
}

// Config returns the store configuration.
func (s *Store) Config() Config {
	return s.config
}

// Load reads the entry and returns a snapshot of it.
//
// Load never fails. When the chip is absent, the part is wrong, or the
// entry is invalid, the snapshot carries a diagnostic file instead and its
// Status says why.
func (s *Store) Load() Snapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id, err := s.dev.Check()
	if err != nil {
		if errors.Is(err, pkg.ErrWrongPart) {
			pkg.LogWarn(pkg.ComponentStore, "unsupported flash part",
				"id", fmt.Sprintf("0x%06X", id))
			return wrongPartSnapshot(id)
		}
		pkg.LogWarn(pkg.ComponentStore, "flash not responding",
			"id", fmt.Sprintf("0x%06X", id),
			"error", err)
		return noFlashSnapshot(id)
	}

	e, err := s.readEntry()
	if err != nil {
		pkg.LogWarn(pkg.ComponentStore, "entry read failed", "error", err)
		return noFlashSnapshot(id)
	}
	if !e.Valid() {
		pkg.LogInfo(pkg.ComponentStore, "no valid entry",
			"addr", fmt.Sprintf("0x%06X", s.config.Address),
			"size", e.Size)
		return badEntrySnapshot(id)
	}

	snap := Snapshot{
		Name:   e.FileName(),
		Data:   append([]byte(nil), e.Payload()...),
		Status: StatusOK,
		ID:     id,
	}
	pkg.LogDebug(pkg.ComponentStore, "entry loaded",
		"name", snap.Name,
		"size", len(snap.Data))
	return snap
}

// ReadEntry returns the raw entry without applying the validity check.
func (s *Store) ReadEntry() (FileEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.dev.Check(); err != nil {
		return FileEntry{}, err
	}
	return s.readEntry()
}

// Replace overwrites the entry with name and data. An empty name selects
// the configured file name; data beyond DataSize is dropped.
func (s *Store) Replace(ctx context.Context, name string, data []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.replace(ctx, name, data)
}

// AppendLine logs line at the head of the ring log kept in the entry and
// stores it under the configured file name. See RingAppend.
func (s *Store) AppendLine(ctx context.Context, line []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.dev.Check(); err != nil {
		return fmt.Errorf("append line: %w", err)
	}
	if len(line) == 0 {
		return fmt.Errorf("append line: empty line: %w", pkg.ErrInvalidParameter)
	}

	e, err := s.readEntry()
	if err != nil {
		return fmt.Errorf("append line: %w", err)
	}
	var prior []byte
	if e.Valid() {
		prior = e.Payload()
	}

	if err := s.replace(ctx, s.config.FileName, RingAppend(prior, line)); err != nil {
		return fmt.Errorf("append line: %w", err)
	}
	return nil
}

// Erase erases the sector holding the entry, leaving no valid file.
func (s *Store) Erase(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.dev.SectorErase(ctx, s.config.Address); err != nil {
		return fmt.Errorf("erase entry: %w", err)
	}
	pkg.LogInfo(pkg.ComponentStore, "entry erased",
		"addr", fmt.Sprintf("0x%06X", s.config.Address))
	return nil
}

func (s *Store) replace(ctx context.Context, name string, data []byte) error {
	if _, err := s.dev.Check(); err != nil {
		return fmt.Errorf("replace entry: %w", err)
	}
	if name == "" {
		name = s.config.FileName
	}

	e := NewFileEntry(name, data)
	e.encode(s.buf[:])

	if err := s.dev.SectorErase(ctx, s.config.Address); err != nil {
		return fmt.Errorf("replace entry: %w", err)
	}
	if err := s.dev.Write(ctx, s.config.Address, s.buf[:]); err != nil {
		return fmt.Errorf("replace entry: %w", err)
	}

	pkg.LogInfo(pkg.ComponentStore, "entry written",
		"name", e.FileName(),
		"size", e.Size)
	return nil
}

func (s *Store) readEntry() (FileEntry, error) {
	var e FileEntry
	if err := s.dev.Read(s.config.Address, s.buf[:]); err != nil {
		return e, fmt.Errorf("read entry: %w", err)
	}
	if err := e.UnmarshalBinary(s.buf[:]); err != nil {
		return e, err
	}
	return e, nil
}
