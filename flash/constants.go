package flash

// SPI NOR command opcodes (P25Q16SH and compatible parts).
const (
	CmdWriteEnable      = 0x06 // Set write enable latch
	CmdWriteDisable     = 0x04 // Clear write enable latch
	CmdReadStatus       = 0x05 // Read status register
	CmdWriteStatus      = 0x01 // Write status register
	CmdPageProgram      = 0x02 // Program up to one page
	CmdReadData         = 0x03 // Read data (no dummy cycles)
	CmdSectorErase      = 0x20 // Erase one 4 KiB sector
	CmdChipErase        = 0xC7 // Erase entire array
	CmdPowerDown        = 0xB9 // Enter deep power down
	CmdReleasePowerDown = 0xAB // Leave deep power down
	CmdReadID           = 0x9F // Read JEDEC id (3 bytes)
)

// Status register bits.
const (
	StatusBusy = 0x01 // Write in progress
	StatusWEL  = 0x02 // Write enable latch
)

// Array geometry.
const (
	PageSize   = 256  // Program granularity
	SectorSize = 4096 // Erase granularity

	// AddressLimit is one past the highest 24-bit address.
	AddressLimit = 1 << 24
)

// ManufacturerPuya is the JEDEC manufacturer byte of the P25Q series.
const ManufacturerPuya = 0x85

// Id values reported by a bus with no chip attached.
const (
	idFloatingLow  = 0x000000
	idFloatingHigh = 0xFFFFFF
)
