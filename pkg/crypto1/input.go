package crypto1

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is an accepted representation of a key, register state or PRNG
// seed. The set is closed: Uint, Text and Bits.
type Value interface {
	resolve(width int) (uint64, error)
}

// Uint is a value given as an integer.
type Uint uint64

// Text is a value given as a Go integer literal, e.g. "0xA0A1A2A3A4A5" or
// "176616078812325".
type Text string

// Bits is a value given as exactly width elements of 0 or 1, most significant
// first.
type Bits []uint8

func (v Uint) resolve(width int) (uint64, error) {
	if width < 64 && uint64(v)>>uint(width) != 0 {
		return 0, fmt.Errorf("value %#x does not fit in %d bits", uint64(v), width)
	}
	return uint64(v), nil
}

func (v Text) resolve(width int) (uint64, error) {
	trimmed := strings.TrimSpace(string(v))
	if trimmed == "" {
		return 0, fmt.Errorf("empty value")
	}
	n, err := strconv.ParseUint(trimmed, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", trimmed, err)
	}
	return Uint(n).resolve(width)
}

func (v Bits) resolve(width int) (uint64, error) {
	if len(v) != width {
		return 0, fmt.Errorf("expected %d bits, got %d", width, len(v))
	}
	for i, b := range v {
		if b > 1 {
			return 0, fmt.Errorf("element %d is %d, not a bit", i, b)
		}
	}
	return Bits2Uint(v), nil
}
