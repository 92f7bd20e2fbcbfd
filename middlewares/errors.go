package middlewares

import (
	"errors"
	"fmt"
)

// PanicError is returned by Recover in place of a handler panic.
type PanicError struct {
	Value any
	Stack []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
