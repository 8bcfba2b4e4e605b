package cnf

import (
	"fmt"
	"strconv"
	"strings"
)

// Array is an ordered run of known bit values, most significant first, that
// becomes solver assumptions on consecutive variables.
type Array []bool

// FromUint takes the n low bits of v.
func FromUint(v uint64, n int) Array {
	a := make(Array, n)
	for i := range a {
		a[i] = v>>uint(n-1-i)&1 == 1
	}
	return a
}

// FromText parses a Go integer literal ("0x...", decimal, "0b...") into n
// bits. The value must fit.
func FromText(s string, n int) (Array, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	if n < 64 && v>>uint(n) != 0 {
		return nil, fmt.Errorf("value %#x does not fit in %d bits", v, n)
	}
	return FromUint(v, n), nil
}

// FromModel copies a slice of solver values.
func FromModel(model []bool) Array {
	return append(Array(nil), model...)
}

// Literals returns +(base+i) for set bits and -(base+i) for clear ones.
func (a Array) Literals(base int) []int {
	lits := make([]int, len(a))
	for i, b := range a {
		lits[i] = base + i
		if !b {
			lits[i] = -lits[i]
		}
	}
	return lits
}

// Reverse returns a copy in the opposite order.
func (a Array) Reverse() Array {
	r := make(Array, len(a))
	for i, b := range a {
		r[len(a)-1-i] = b
	}
	return r
}

// Uint packs up to 64 bits.
func (a Array) Uint() uint64 {
	var v uint64
	for _, b := range a {
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v
}

// Hex formats the value with a 0x prefix.
func (a Array) Hex() string {
	return fmt.Sprintf("%#x", a.Uint())
}

// Binary formats the bits as 0 and 1 characters.
func (a Array) Binary() string {
	var sb strings.Builder
	for _, b := range a {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// String formats the bits as 1 and -1 separated by spaces.
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, b := range a {
		parts[i] = "-1"
		if b {
			parts[i] = "1"
		}
	}
	return strings.Join(parts, " ")
}
