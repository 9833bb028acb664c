package volume

import (
	"fmt"
	"io"
	"sync"

	"github.com/ardnew/flashlog/pkg"
	"github.com/ardnew/flashlog/store"
)

// Source supplies the snapshot a volume is prepared from.
// *store.Store implements it.
type Source interface {
	Load() store.Snapshot
}

// Volume serves a synthesized read-only FAT12 volume to a mass-storage
// transport. Its method set matches the block storage contract expected by
// a USB MSC class driver.
//
// The served Image is replaced only by Prepare or SetImage. Reads render
// sectors from the current Image and never touch flash.
type Volume struct {
	config Config
	image  *Image

	ready   bool
	present bool

	mutex sync.RWMutex
}

// New creates a volume with no image. Prepare or SetImage must be called
// before the host reads it.
func New(opts ...Option) *Volume {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Volume{
		config:  cfg,
		present: true,
	}
}

// Config returns the volume layout.
func (v *Volume) Config() Config {
	return v.config
}

// Prepare loads a snapshot from src and serves it from now on.
// It returns the new image.
func (v *Volume) Prepare(src Source) *Image {
	img := newImage(src.Load(), v.config)
	v.SetImage(img)
	return img
}

// SetImage replaces the served image.
func (v *Volume) SetImage(img *Image) {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	v.image = img
	v.present = img != nil
	if img != nil {
		pkg.LogInfo(pkg.ComponentVolume, "image prepared",
			"file", img.Name(),
			"size", img.FileSize(),
			"status", img.Status())
	}
}

// Image returns the served image, or nil before the first Prepare.
func (v *Volume) Image() *Image {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.image
}

// Init marks the volume ready. It performs no flash access.
func (v *Volume) Init() error {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	v.ready = true
	return nil
}

// IsReady reports whether Init was called and an image is prepared.
func (v *Volume) IsReady() bool {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.ready && v.image != nil
}

// Geometry returns the block size and block count.
func (v *Volume) Geometry() (blockSize uint32, blockCount uint64) {
	return v.BlockSize(), v.BlockCount()
}

// BlockSize returns the block size.
func (v *Volume) BlockSize() uint32 {
	return SectorSize
}

// BlockCount returns the number of blocks.
func (v *Volume) BlockCount() uint64 {
	return uint64(v.config.SectorCount)
}

// Read renders blocks starting at lba into buf.
// Returns number of blocks read or error.
func (v *Volume) Read(lba uint64, blocks uint32, buf []byte) (uint32, error) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	if !v.ready {
		return 0, pkg.ErrNotReady
	}
	if v.image == nil {
		return 0, pkg.ErrNotPrepared
	}
	if !v.present {
		return 0, io.EOF
	}
	if lba+uint64(blocks) > uint64(v.config.SectorCount) {
		return 0, fmt.Errorf("read %d blocks at %d: %w", blocks, lba, pkg.ErrOutOfRange)
	}
	if uint64(len(buf)) < uint64(blocks)*SectorSize {
		return 0, pkg.ErrBufferTooSmall
	}

	for i := uint32(0); i < blocks; i++ {
		off := int(i) * SectorSize
		if err := v.image.ReadSector(uint32(lba)+i, buf[off:off+SectorSize]); err != nil {
			return i, err
		}
	}
	return blocks, nil
}

// Write always fails: the volume is read-only to the host.
func (v *Volume) Write(lba uint64, blocks uint32, buf []byte) (uint32, error) {
	pkg.LogDebug(pkg.ComponentVolume, "host write rejected",
		"lba", lba,
		"blocks", blocks)
	return 0, pkg.ErrWriteProtected
}

// Sync is a no-op; the volume holds no cached writes.
func (v *Volume) Sync() error {
	return nil
}

// IsReadOnly returns true.
func (v *Volume) IsReadOnly() bool {
	return true
}

// IsRemovable returns true.
func (v *Volume) IsRemovable() bool {
	return true
}

// IsPresent reports whether media is present. Eject clears it; the next
// prepared image restores it.
func (v *Volume) IsPresent() bool {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.present
}

// Eject marks the media as removed.
func (v *Volume) Eject() error {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	v.present = false
	return nil
}

// Inquiry returns the INQUIRY data identifying the volume.
func (v *Volume) Inquiry() InquiryResponse {
	return newInquiryResponse(v.IsRemovable())
}

// Capacity returns the READ CAPACITY (10) data for the volume.
func (v *Volume) Capacity() ReadCapacity10Response {
	return ReadCapacity10Response{
		LastLBA:     v.config.SectorCount - 1,
		BlockLength: SectorSize,
	}
}
