// Package sim provides an in-memory SPI NOR flash chip for testing and for
// running the host tool without hardware.
//
// The emulator interprets the same command set as a P25Q16SH: identify,
// status, write enable/disable, read, page program, sector erase, chip
// erase and deep power down. It keeps the hardware constraints that matter
// to callers:
//
//   - erase and program are ignored unless the write enable latch is set
//   - the latch clears after each erase or program
//   - programming can only clear bits (AND with the existing contents)
//   - a program that runs past the end of a page wraps to the page start
//   - the chip reports busy for a number of status polls after each
//     erase or program and ignores other commands meanwhile
//
// A committed-operation log ([Chip.Ops]) lets tests check how callers split
// their writes. [Chip.Load] and [Chip.Save] persist the array to a file.
package sim
