// Package datalog is the application layer of the temperature logger.
//
// A [Logger] owns the record store and the synthesized volume. While
// detached from the host it samples the sensor and appends timestamped
// lines to the ring log in flash. On [Logger.Attach] it takes one snapshot
// of the stored file and serves it as a read-only FAT12 volume until
// [Logger.Detach].
//
//	chip := sim.New()
//	st := store.New(flash.New(chip, chip))
//	lg := datalog.New(st, volume.New(), datalog.WithSensor(sensor))
//
//	err := lg.Sample(ctx)                 // button press
//	img, err := lg.Attach()               // USB inserted
//	n, err := lg.Volume().Read(0, 1, buf) // host reads sectors
//	lg.Detach()                           // USB removed
package datalog
