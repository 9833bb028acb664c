package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ardnew/flashlog/datalog"
	"github.com/ardnew/flashlog/flash"
	"github.com/ardnew/flashlog/flash/hal/sim"
	"github.com/ardnew/flashlog/pkg"
	"github.com/ardnew/flashlog/store"
	"github.com/ardnew/flashlog/volume"
)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	image     string
	spidev    string
	i2c       string
	speed     uint32
	jedec     uint32
	retries   int
	sectors   uint32
	address   uint32
	label     string
	logLevel  string
	logFormat string
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.image, "image", "", "backing file of the simulated chip (loaded before, saved after changes)")
	fs.StringVar(&g.spidev, "spidev", "", "spidev device of a real chip, e.g. /dev/spidev0.0 (overrides --image)")
	fs.StringVar(&g.i2c, "i2c", "", "i2c-dev adapter of the NST112 sensor, e.g. /dev/i2c-1")
	fs.Uint32Var(&g.speed, "speed", 1000000, "SPI clock in Hz")
	fs.Uint32Var(&g.jedec, "jedec", sim.DefaultJEDEC, "JEDEC id reported by the simulated chip")
	fs.IntVar(&g.retries, "retries", flash.DefaultReadyRetries, "status polls before a flash operation times out")
	fs.Uint32Var(&g.sectors, "sectors", volume.DefaultSectorCount, "512-byte sectors reported by the volume")
	fs.Uint32Var(&g.address, "address", store.DefaultAddress, "flash address of the file entry")
	fs.StringVar(&g.label, "label", volume.DefaultLabel, "volume label")
	fs.StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fs.StringVar(&g.logFormat, "log-format", "text", "log format: text, json")
}

// configureLogging applies --log-level and --log-format.
func (g *globalFlags) configureLogging(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(g.logLevel))); err != nil {
		return fmt.Errorf("unknown --log-level %q", g.logLevel)
	}
	pkg.SetLogFormat(pkg.ParseLogFormat(strings.ToLower(g.logFormat)), w)
	pkg.SetLogLevel(level)
	return nil
}

// session is one opened chip with the layers stacked on it.
type session struct {
	flash  *flash.Device
	store  *store.Store
	logger *datalog.Logger

	chip   *sim.Chip
	image  string
	closer io.Closer
	dirty  bool
}

// open connects to the chip selected by the flags.
func (g *globalFlags) open() (*session, error) {
	var opts []flash.Option
	if g.retries > 0 {
		opts = append(opts, flash.WithReadyRetries(g.retries))
	}

	s := &session{}
	if g.spidev != "" {
		bus, cs, closer, err := openSPI(g.spidev, g.speed)
		if err != nil {
			return nil, err
		}
		s.flash = flash.New(bus, cs, opts...)
		s.closer = closer
	} else {
		s.chip = sim.New(sim.WithJEDEC(g.jedec))
		if g.image != "" {
			if err := s.chip.Load(g.image); err != nil {
				return nil, err
			}
			s.image = g.image
		}
		s.flash = flash.New(s.chip, s.chip, opts...)
	}

	s.store = store.New(s.flash, store.WithAddress(g.address))

	logOpts := []datalog.Option{datalog.WithIndicator(logIndicator{})}
	if g.i2c != "" {
		sensor, closer, err := openSensor(g.i2c)
		if err != nil {
			return nil, errors.Join(err, s.Close())
		}
		logOpts = append(logOpts, datalog.WithSensor(sensor))
		s.closer = joinClosers(s.closer, closer)
	}
	s.logger = datalog.New(s.store, volume.New(
		volume.WithSectorCount(g.sectors),
		volume.WithLabel(g.label),
	), logOpts...)
	return s, nil
}

// changed marks flash as modified so Close saves the simulated image.
func (s *session) changed() {
	s.dirty = true
}

// Close saves the simulated image if it changed and releases devices.
func (s *session) Close() error {
	var errs []error
	if s.chip != nil && s.image != "" && s.dirty {
		if err := s.chip.Save(s.image); err != nil {
			errs = append(errs, err)
		} else {
			pkg.LogDebug(pkg.ComponentCLI, "image saved", "path", s.image)
		}
	}
	if s.closer != nil {
		errs = append(errs, s.closer.Close())
	}
	return errors.Join(errs...)
}

// logIndicator reports sample outcomes through the log.
type logIndicator struct{}

func (logIndicator) Success() { pkg.LogInfo(pkg.ComponentCLI, "sample stored") }
func (logIndicator) Failure() { pkg.LogWarn(pkg.ComponentCLI, "sample failed") }

type closers []io.Closer

func (c closers) Close() error {
	var errs []error
	for _, cl := range c {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}

func joinClosers(a, b io.Closer) io.Closer {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return closers{a, b}
}
