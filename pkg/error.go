package pkg

import "errors"

// Flash errors.
var (
	// ErrNoFlash indicates the flash chip did not answer the identify
	// command (id read back as all zeros or all ones).
	ErrNoFlash = errors.New("flash not responding")

	// ErrWrongPart indicates the flash answered with an unexpected
	// manufacturer id.
	ErrWrongPart = errors.New("unsupported flash part")

	// ErrTimeout indicates the flash stayed busy past the retry budget.
	ErrTimeout = errors.New("flash ready timeout")

	// ErrAddressRange indicates an address beyond the 24-bit address space.
	ErrAddressRange = errors.New("flash address out of range")
)

// Record and volume errors.
var (
	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrBufferTooSmall indicates the provided buffer is too small.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrOutOfRange indicates a block address outside the volume geometry.
	ErrOutOfRange = errors.New("block address out of range")

	// ErrWriteProtected indicates a write against the read-only volume.
	ErrWriteProtected = errors.New("volume is write protected")

	// ErrNotReady indicates the volume has not been initialized.
	ErrNotReady = errors.New("volume not ready")

	// ErrNotPrepared indicates the volume has no snapshot to serve.
	ErrNotPrepared = errors.New("volume image not prepared")

	// ErrNotSupported indicates an unsupported operation.
	ErrNotSupported = errors.New("not supported")

	// ErrBusy indicates flash access was requested while the volume is
	// being served to the host.
	ErrBusy = errors.New("volume attached to host")
)
