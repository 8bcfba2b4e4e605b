package crypto1

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched by every constructor error caused by the shape of a key, state or seed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOutOfOrder is returned when an authentication step runs before the one it depends on.
	ErrOutOfOrder = errors.New("authentication step out of order")

	// ErrReaderMismatch is returned by a tag when the decrypted reader answer is not suc64(nt).
	ErrReaderMismatch = errors.New("reader answer does not match tag nonce")
)

// InputError describes why a constructor rejected its input.
type InputError struct {
	Field string // "key", "state" or "seed"
	Cause error  // Underlying parse or range error
}

func (e *InputError) Error() string {
	if e == nil {
		return "invalid input"
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Cause)
}

func (e *InputError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports ErrInvalidInput as matching so callers can use errors.Is.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IsInvalidInput checks if an error was caused by a malformed key, state or seed.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
