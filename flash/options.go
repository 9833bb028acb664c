package flash

import "time"

// Config holds the flash device configuration.
type Config struct {
	// Manufacturer is the JEDEC manufacturer byte accepted by CheckID.
	Manufacturer uint8

	// ReadyRetries bounds the number of status polls in WaitReady.
	ReadyRetries int

	// PollInterval is the pause between status polls. Zero spins.
	PollInterval time.Duration
}

// DefaultReadyRetries is the default WaitReady poll budget.
const DefaultReadyRetries = 1000000

func defaultConfig() Config {
	return Config{
		Manufacturer: ManufacturerPuya,
		ReadyRetries: DefaultReadyRetries,
	}
}

// Option is a functional option for configuring a Device.
type Option func(*Config)

// WithManufacturer sets the JEDEC manufacturer byte accepted by CheckID.
//
// Example:
//
//	dev := flash.New(bus, cs, flash.WithManufacturer(0xEF)) // Winbond
func WithManufacturer(id uint8) Option {
	return func(c *Config) {
		c.Manufacturer = id
	}
}

// WithReadyRetries sets the maximum number of status polls performed by
// WaitReady before it gives up with pkg.ErrTimeout.
func WithReadyRetries(retries int) Option {
	return func(c *Config) {
		if retries > 0 {
			c.ReadyRetries = retries
		}
	}
}

// WithPollInterval sets the delay between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.PollInterval = d
		}
	}
}
