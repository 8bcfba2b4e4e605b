package crypto1

import "math/bits"

// Uint2Bits returns the n low bits of v, most significant first.
func Uint2Bits(v uint64, n int) []uint8 {
	out := make([]uint8, n)
	for i := range out {
		out[i] = uint8(v >> (n - 1 - i) & 1)
	}
	return out
}

// Bits2Uint packs a most-significant-first bit slice into an integer.
// Elements are taken modulo 2.
func Bits2Uint(b []uint8) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<1 | uint64(x&1)
	}
	return v
}

// Swap32 reverses the byte order of a word.
func Swap32(v uint32) uint32 {
	return bits.ReverseBytes32(v)
}

// BitReverse8 reverses the bit order of a byte.
func BitReverse8(b byte) byte {
	return bits.Reverse8(b)
}

// BitReverse32 reverses the bit order inside each byte of a word, keeping the
// bytes in place. It converts wire-order keystream to generation order and
// back.
func BitReverse32(v uint32) uint32 {
	return bits.ReverseBytes32(bits.Reverse32(v))
}

func parity(s State) uint8 {
	return uint8(bits.OnesCount64(uint64(s)) & 1)
}
