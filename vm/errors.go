package vm

import (
	"errors"
	"fmt"

	"github.com/chazu/netfsck/compiler"
)

// Runtime fault causes. A *RuntimeError wraps exactly one of these.
var (
	// ErrPointerOutOfBounds is reported when a move would leave the tape.
	ErrPointerOutOfBounds = errors.New("pointer moved outside the tape")

	// ErrNoInteractiveInput is reported when Query runs without a
	// terminal or other input source attached.
	ErrNoInteractiveInput = errors.New("terminal is not user attended")

	// ErrInterrupted is reported when the user presses Ctrl-C while a
	// raw-mode Query is waiting for a key.
	ErrInterrupted = errors.New("interrupted")
)

// RuntimeError is a fault that stops execution. Op is the instruction
// that faulted and Pointer the pointer value at the time of the fault.
type RuntimeError struct {
	Op      compiler.Opcode
	Amount  int
	Pointer int
	Err     error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime fault at %s x%d (pointer %d): %v", e.Op, e.Amount, e.Pointer, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsRuntimeError checks if an error is a runtime fault.
func IsRuntimeError(err error) (*RuntimeError, bool) {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return rerr, true
	}
	return nil, false
}
