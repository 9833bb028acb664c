package datalog

import "time"

// Sensor reads a temperature in Q4 fixed point (°C × 16). A non-zero
// status reports a failed read. *nst112.Device implements it.
type Sensor interface {
	ReadTempQ4() (q4 int16, status int)
}

// Clock supplies the wall-clock time of a reading.
type Clock interface {
	TimeHMS() (hh, mm, ss uint8)
}

// Indicator signals the outcome of a sample to the user, typically with an
// LED blink.
type Indicator interface {
	Success()
	Failure()
}

// SystemClock reads the host time.
type SystemClock struct{}

// TimeHMS implements Clock.
func (SystemClock) TimeHMS() (hh, mm, ss uint8) {
	now := time.Now()
	return uint8(now.Hour()), uint8(now.Minute()), uint8(now.Second())
}

// FixedClock always returns the same time.
type FixedClock struct {
	Hour, Minute, Second uint8
}

// TimeHMS implements Clock.
func (c FixedClock) TimeHMS() (hh, mm, ss uint8) {
	return c.Hour, c.Minute, c.Second
}

type nopIndicator struct{}

func (nopIndicator) Success() {}
func (nopIndicator) Failure() {}
