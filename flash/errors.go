package flash

import (
	"fmt"

	"github.com/ardnew/flashlog/pkg"
)

// IDError reports an identify result that failed the part check.
// It unwraps to pkg.ErrNoFlash or pkg.ErrWrongPart.
type IDError struct {
	ID  uint32
	Err error
}

func (e *IDError) Error() string {
	return fmt.Sprintf("jedec id 0x%06X: %v", e.ID, e.Err)
}

func (e *IDError) Unwrap() error {
	return e.Err
}

func classifyID(id uint32, manufacturer uint8) error {
	switch {
	case id == idFloatingLow || id == idFloatingHigh:
		return &IDError{ID: id, Err: pkg.ErrNoFlash}
	case uint8(id>>16) != manufacturer:
		return &IDError{ID: id, Err: pkg.ErrWrongPart}
	}
	return nil
}
