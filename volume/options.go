package volume

import "github.com/ardnew/flashlog/store"

// Volume defaults.
const (
	DefaultSectorCount = 64
	DefaultLabel       = "FM33FLASH"
	DefaultVolumeID    = 0x20251217

	defaultFileName = store.DefaultFileName
)

// Sector count limits. The layout always has one boot sector, two
// single-sector FATs, one root directory sector and at least one data
// sector. A single FAT12 sector describes clusters up to 340.
const (
	MinSectorCount = lbaData + 1
	MaxSectorCount = lbaData + 339
)

// Config holds the volume layout.
type Config struct {
	SectorCount uint32
	Label       string
	VolumeID    uint32
}

func defaultConfig() Config {
	return Config{
		SectorCount: DefaultSectorCount,
		Label:       DefaultLabel,
		VolumeID:    DefaultVolumeID,
	}
}

// Option is a functional option for configuring a Volume.
type Option func(*Config)

// WithSectorCount sets the number of 512-byte sectors reported to the host.
// Counts outside [MinSectorCount, MaxSectorCount] are ignored.
func WithSectorCount(n uint32) Option {
	return func(c *Config) {
		if n >= MinSectorCount && n <= MaxSectorCount {
			c.SectorCount = n
		}
	}
}

// WithLabel sets the volume label. Labels are truncated to 11 characters
// and upper-cased.
func WithLabel(label string) Option {
	return func(c *Config) {
		if label != "" {
			c.Label = label
		}
	}
}

// WithVolumeID sets the volume serial number written to the boot sector.
func WithVolumeID(id uint32) Option {
	return func(c *Config) {
		c.VolumeID = id
	}
}
