package store

// DefaultFileName is the name given to entries written without one.
const DefaultFileName = "file.txt"

// DefaultAddress is the flash address of the entry.
const DefaultAddress = 0x000000

// sectorSize is the flash erase granularity.
const sectorSize = 4096

// Config holds the store configuration.
type Config struct {
	// Address is the flash address of the entry. The entry must not span
	// an erase sector.
	Address uint32

	// FileName names entries written by AppendLine and by Replace with an
	// empty name.
	FileName string
}

func defaultConfig() Config {
	return Config{
		Address:  DefaultAddress,
		FileName: DefaultFileName,
	}
}

// Option is a functional option for configuring a Store.
type Option func(*Config)

// WithAddress sets the entry address. Addresses that would make the entry
// span two erase sectors are ignored.
func WithAddress(addr uint32) Option {
	return func(c *Config) {
		if int(addr%sectorSize)+EntrySize <= sectorSize {
			c.Address = addr
		}
	}
}

// WithFileName sets the default file name.
func WithFileName(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.FileName = name
		}
	}
}
