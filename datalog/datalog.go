package datalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardnew/flashlog/pkg"
	"github.com/ardnew/flashlog/store"
	"github.com/ardnew/flashlog/volume"
)

// SensorError reports a failed sensor read during Sample.
type SensorError struct {
	Status int
}

func (e *SensorError) Error() string {
	return fmt.Sprintf("sensor read failed, rc=%d", e.Status)
}

// Logger ties the record store to the synthesized volume and enforces the
// split between the two phases of the device:
//
//   - detached: flash may be written (LogLine, WriteWholeFile, Sample)
//   - attached: the volume is served to the host and flash writes fail
//     with pkg.ErrBusy
//
// The snapshot served while attached is taken on every transition from
// detached to attached, so it holds everything written before Attach.
type Logger struct {
	store  *store.Store
	volume *volume.Volume

	sensor    Sensor
	clock     Clock
	indicator Indicator

	attached bool

	mutex sync.Mutex
}

// Option configures a Logger.
type Option func(*Logger)

// WithSensor sets the temperature sensor used by Sample.
func WithSensor(s Sensor) Option {
	return func(l *Logger) {
		l.sensor = s
	}
}

// WithClock sets the clock stamped on log lines. The default is the host
// clock.
func WithClock(c Clock) Option {
	return func(l *Logger) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithIndicator sets the indicator signalled by Sample.
func WithIndicator(ind Indicator) Option {
	return func(l *Logger) {
		if ind != nil {
			l.indicator = ind
		}
	}
}

// New creates a Logger over st serving vol.
func New(st *store.Store, vol *volume.Volume, opts ...Option) *Logger {
	if st == nil || vol == nil {
		panic("store and volume cannot be nil")
	}
	l := &Logger{
		store:     st,
		volume:    vol,
		clock:     SystemClock{},
		indicator: nopIndicator{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Volume returns the served volume.
func (l *Logger) Volume() *volume.Volume {
	return l.volume
}

// PrepareVolumeImage reads the stored file from flash and makes it the
// content of the volume. Sector reads afterwards never touch flash.
// While attached it fails with pkg.ErrBusy and the served image is kept.
func (l *Logger) PrepareVolumeImage() (*volume.Image, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.attached {
		return nil, pkg.ErrBusy
	}
	return l.volume.Prepare(l.store), nil
}

// Attach enters the serving phase, taking a fresh snapshot of flash right
// before the volume is served. Attaching again while attached keeps the
// current snapshot.
func (l *Logger) Attach() (*volume.Image, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.attached {
		return l.volume.Image(), nil
	}
	img := l.volume.Prepare(l.store)
	if err := l.volume.Init(); err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	l.attached = true

	pkg.LogInfo(pkg.ComponentDatalog, "volume attached",
		"file", img.Name(),
		"status", img.Status())
	return img, nil
}

// Detach leaves the serving phase and ejects the volume.
func (l *Logger) Detach() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.attached {
		return
	}
	l.attached = false
	_ = l.volume.Eject()
	pkg.LogInfo(pkg.ComponentDatalog, "volume detached")
}

// Attached reports whether the volume is being served.
func (l *Logger) Attached() bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.attached
}

// LogLine appends text to the ring log.
func (l *Logger) LogLine(ctx context.Context, text string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.attached {
		return pkg.ErrBusy
	}
	return l.store.AppendLine(ctx, []byte(text))
}

// WriteWholeFile replaces the stored file with name and data.
func (l *Logger) WriteWholeFile(ctx context.Context, name string, data []byte) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.attached {
		return pkg.ErrBusy
	}
	return l.store.Replace(ctx, name, data)
}

// LogTemperature appends a timestamped temperature line to the ring log.
func (l *Logger) LogTemperature(ctx context.Context, q4 int16) error {
	hh, mm, ss := l.clock.TimeHMS()
	return l.LogLine(ctx, FormatTemperatureLine(q4, hh, mm, ss))
}

// WriteTemperatureFile replaces the stored file with a single reading.
func (l *Logger) WriteTemperatureFile(ctx context.Context, q4 int16) error {
	return l.WriteWholeFile(ctx, "", []byte(FormatTemperatureFile(q4)))
}

// Sample reads the sensor and logs the reading, or an error line when the
// read fails. The indicator signals success once, or failure twice for a
// sensor error and once for a flash error.
func (l *Logger) Sample(ctx context.Context) error {
	if l.sensor == nil {
		return fmt.Errorf("sample: no sensor: %w", pkg.ErrNotSupported)
	}

	q4, rc := l.sensor.ReadTempQ4()
	hh, mm, ss := l.clock.TimeHMS()

	if rc != 0 {
		pkg.LogWarn(pkg.ComponentDatalog, "sensor read failed", "rc", rc)
		err := l.LogLine(ctx, FormatSensorError(rc, hh, mm, ss))
		l.indicator.Failure()
		l.indicator.Failure()
		return errors.Join(&SensorError{Status: rc}, err)
	}

	if err := l.LogLine(ctx, FormatTemperatureLine(q4, hh, mm, ss)); err != nil {
		l.indicator.Failure()
		return fmt.Errorf("sample: %w", err)
	}
	pkg.LogInfo(pkg.ComponentDatalog, "temperature logged",
		"celsius", FormatTemperature(q4))
	l.indicator.Success()
	return nil
}
