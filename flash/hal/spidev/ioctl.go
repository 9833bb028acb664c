package spidev

// ioctl encoding shared by the common Linux architectures
// (amd64, 386, arm, arm64, riscv64).
//
//	bits 0-7:   command number (nr)
//	bits 8-15:  ioctl type (type)
//	bits 16-29: argument size (size)
//	bits 30-31: direction (dir)
const (
	iocWrite = 1

	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocSizeMax = 1<<14 - 1
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift)
}

func iow(typ, nr, size uintptr) uintptr {
	return ioc(iocWrite, typ, nr, size)
}

// spidev ioctl type character.
const spiIOCMagic = 'k'

// transferSize is sizeof(struct spi_ioc_transfer).
const transferSize = 32

// maxTransfers is the largest message the size field can describe.
const maxTransfers = iocSizeMax / transferSize

var (
	spiIOCWrMode        = iow(spiIOCMagic, 1, 1)
	spiIOCWrBitsPerWord = iow(spiIOCMagic, 3, 1)
	spiIOCWrMaxSpeedHz  = iow(spiIOCMagic, 4, 4)
)

// spiIOCMessage returns SPI_IOC_MESSAGE(n).
func spiIOCMessage(n int) uintptr {
	return iow(spiIOCMagic, 0, uintptr(n*transferSize))
}

// iocTransfer matches the kernel's struct spi_ioc_transfer.
type iocTransfer struct {
	txBuf          uint64 // User pointer to bytes to send, 0 sends zeros
	rxBuf          uint64 // User pointer to receive buffer, 0 discards
	length         uint32 // Bytes in this transfer
	speedHz        uint32 // Override speed, 0 uses the device default
	delayUsecs     uint16 // Delay after the transfer
	bitsPerWord    uint8  // Override word size, 0 uses the device default
	csChange       uint8  // Deselect before the next transfer
	txNbits        uint8
	rxNbits        uint8
	wordDelayUsecs uint8
	pad            uint8
}
