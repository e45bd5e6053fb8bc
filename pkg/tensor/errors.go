package tensor

import (
	"errors"
	"fmt"

	"github.com/justinsb/mnntensor/pkg/engine"
	"github.com/justinsb/mnntensor/pkg/halide"
)

var (
	ErrTensorCopyFailed   = errors.New("tensor copy failed")
	ErrHalideTypeMismatch = errors.New("halide type mismatch")
)

// CopyFailedError reports an engine copy that returned a failure status.
type CopyFailedError struct {
	Code engine.Status
}

func (e *CopyFailedError) Error() string {
	return fmt.Sprintf("tensor copy failed (status %d)", e.Code)
}

func (e *CopyFailedError) Is(target error) bool {
	return target == ErrTensorCopyFailed
}

// TypeMismatchError reports host access with an element type the buffer does not hold.
type TypeMismatchError struct {
	// Requested is the Go name of the requested element type.
	Requested string
	// Actual is the runtime type of the buffer.
	Actual halide.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("halide type mismatch: requested %s, tensor holds %s", e.Requested, e.Actual)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrHalideTypeMismatch
}
