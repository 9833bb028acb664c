// Package flash implements the SPI NOR flash transport and command layer.
//
// The package is split in two levels:
//
//  1. [Transport] - chip-select framing of command, address and data bytes
//  2. [Device] - identify, status, wait-ready, write enable, sector erase,
//     page program and read, sequenced the way the chip requires
//
// # Write Protocol
//
// NOR flash can only clear bits. Changing stored data means erasing the
// whole sector (all bits back to 1) and programming it again. Each erase
// and each program must be preceded by a write-enable command, and the
// chip is busy until the status register busy bit clears.
//
// A page program must not cross a 256-byte page boundary: the chip wraps
// the address within the page and silently overwrites its start. [Device.Write]
// splits arbitrary buffers with [PageChunks] so no single program crosses
// a boundary.
//
// # Identity Check
//
// Erase and program entry points read the JEDEC id first and refuse to touch
// the array unless the manufacturer byte matches [Config.Manufacturer]. An
// id of 0x000000 or 0xFFFFFF means nothing answered on the bus:
//
//	if _, err := dev.Check(); errors.Is(err, pkg.ErrNoFlash) {
//	    // no chip
//	}
//
// # Usage Example
//
//	chip := sim.New()
//	dev := flash.New(chip, chip, flash.WithReadyRetries(10000))
//
//	if err := dev.SectorErase(ctx, 0); err != nil {
//	    return err
//	}
//	if err := dev.Write(ctx, 0, payload); err != nil {
//	    return err
//	}
package flash
