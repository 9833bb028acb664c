package volume

import (
	"encoding/binary"
	"fmt"

	"github.com/ardnew/flashlog/pkg"
	"github.com/ardnew/flashlog/store"
)

// SectorSize is the logical block size of the volume.
const SectorSize = 512

// BIOS parameter block values.
const (
	bpbSectorsPerCluster = 1
	bpbReservedSectors   = 1
	bpbNumFATs           = 2
	bpbRootEntries       = 16
	bpbFATSectors        = 1
	bpbMedia             = 0xF8
	bpbSectorsPerTrack   = 63
	bpbHeads             = 255
	bpbDriveNumber       = 0x80
	bpbBootSignature     = 0x29
)

// Fixed sector addresses.
const (
	lbaBoot = 0
	lbaFAT1 = lbaBoot + bpbReservedSectors
	lbaFAT2 = lbaFAT1 + bpbFATSectors
	lbaRoot = lbaFAT2 + bpbFATSectors
	lbaData = lbaRoot + 1 // Cluster 2
)

// Directory entry fields.
const (
	dirEntrySize     = 32
	dirAttrVolumeID  = 0x08
	dirAttrArchive   = 0x20
	dirOffAttr       = 11
	dirOffCluster    = 26
	dirOffSize       = 28
	fileFirstCluster = 2
)

// SectorKind identifies the role of a sector in the volume.
type SectorKind int

// Sector kinds.
const (
	SectorBoot SectorKind = iota
	SectorFAT
	SectorRootDir
	SectorData
	SectorZero
)

// String returns the sector kind name.
func (k SectorKind) String() string {
	switch k {
	case SectorBoot:
		return "boot"
	case SectorFAT:
		return "fat"
	case SectorRootDir:
		return "root"
	case SectorData:
		return "data"
	case SectorZero:
		return "zero"
	default:
		return "unknown"
	}
}

// KindOf returns the role of sector lba.
func KindOf(lba uint32) SectorKind {
	switch lba {
	case lbaBoot:
		return SectorBoot
	case lbaFAT1, lbaFAT2:
		return SectorFAT
	case lbaRoot:
		return SectorRootDir
	case lbaData:
		return SectorData
	default:
		return SectorZero
	}
}

// Image is an immutable volume built from one store snapshot.
//
// Every sector is a pure function of the Image and the sector address;
// rendering never touches flash and never caches.
type Image struct {
	config   Config
	status   store.Status
	name     string
	short    [11]byte
	label    [11]byte
	data     []byte
	fileSize uint32
}

// NewImage builds an image from snap.
func NewImage(snap store.Snapshot, opts ...Option) *Image {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newImage(snap, cfg)
}

func newImage(snap store.Snapshot, cfg Config) *Image {
	data := append([]byte(nil), snap.Data...)
	if len(data) > SectorSize {
		data = data[:SectorSize]
	}
	name := snap.Name
	if name == "" {
		name = defaultFileName
	}
	return &Image{
		config:   cfg,
		status:   snap.Status,
		name:     name,
		short:    ShortName(name),
		label:    padLabel(cfg.Label),
		data:     data,
		fileSize: uint32(len(data)),
	}
}

// Name returns the long file name taken from the snapshot.
func (img *Image) Name() string {
	return img.name
}

// ShortName returns the 8.3 name written to the root directory.
func (img *Image) ShortName() [11]byte {
	return img.short
}

// Status returns the status of the snapshot the image was built from.
func (img *Image) Status() store.Status {
	return img.status
}

// FileSize returns the size reported in the root directory.
func (img *Image) FileSize() uint32 {
	return img.fileSize
}

// Content returns a copy of the file content.
func (img *Image) Content() []byte {
	return append([]byte(nil), img.data...)
}

// SectorCount returns the number of sectors in the volume.
func (img *Image) SectorCount() uint32 {
	return img.config.SectorCount
}

// ReadSector renders sector lba into buf, which must hold SectorSize bytes.
func (img *Image) ReadSector(lba uint32, buf []byte) error {
	if lba >= img.config.SectorCount {
		return fmt.Errorf("sector %d of %d: %w", lba, img.config.SectorCount, pkg.ErrOutOfRange)
	}
	if len(buf) < SectorSize {
		return pkg.ErrBufferTooSmall
	}
	sec := buf[:SectorSize]
	clear(sec)

	switch KindOf(lba) {
	case SectorBoot:
		img.renderBoot(sec)
	case SectorFAT:
		img.renderFAT(sec)
	case SectorRootDir:
		img.renderRoot(sec)
	case SectorData:
		copy(sec, img.data)
	}
	return nil
}

func (img *Image) renderBoot(sec []byte) {
	sec[0], sec[1], sec[2] = 0xEB, 0x3C, 0x90
	copy(sec[3:11], "MSDOS5.0")

	binary.LittleEndian.PutUint16(sec[11:], SectorSize)
	sec[13] = bpbSectorsPerCluster
	binary.LittleEndian.PutUint16(sec[14:], bpbReservedSectors)
	sec[16] = bpbNumFATs
	binary.LittleEndian.PutUint16(sec[17:], bpbRootEntries)
	binary.LittleEndian.PutUint16(sec[19:], uint16(img.config.SectorCount))
	sec[21] = bpbMedia
	binary.LittleEndian.PutUint16(sec[22:], bpbFATSectors)
	binary.LittleEndian.PutUint16(sec[24:], bpbSectorsPerTrack)
	binary.LittleEndian.PutUint16(sec[26:], bpbHeads)
	// Hidden sectors and 32-bit total stay zero.

	sec[36] = bpbDriveNumber
	sec[38] = bpbBootSignature
	binary.LittleEndian.PutUint32(sec[39:], img.config.VolumeID)
	copy(sec[43:54], img.label[:])
	copy(sec[54:62], "FAT12   ")

	sec[510], sec[511] = 0x55, 0xAA
}

// renderFAT writes the media descriptor, the reserved cluster 1 and an
// end-of-chain mark for cluster 2, the single file cluster.
func (img *Image) renderFAT(sec []byte) {
	sec[0], sec[1], sec[2] = bpbMedia, 0xFF, 0xFF
	sec[3], sec[4] = 0xFF, 0x0F
}

func (img *Image) renderRoot(sec []byte) {
	copy(sec[0:11], img.label[:])
	sec[dirOffAttr] = dirAttrVolumeID

	ent := sec[dirEntrySize : 2*dirEntrySize]
	copy(ent[0:11], img.short[:])
	ent[dirOffAttr] = dirAttrArchive
	binary.LittleEndian.PutUint16(ent[dirOffCluster:], fileFirstCluster)
	binary.LittleEndian.PutUint32(ent[dirOffSize:], img.fileSize)
}
