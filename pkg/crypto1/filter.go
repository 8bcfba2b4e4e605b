package crypto1

// Filter truth tables.
const (
	fa uint32 = 0x9E98
	fb uint32 = 0xB48E
	fc uint32 = 0xEC57E80A
)

// FilterA evaluates the first 4-input function on a 4-bit table index.
func FilterA(x uint) uint8 {
	return uint8(fa >> (x & 0xF) & 1)
}

// FilterB evaluates the second 4-input function on a 4-bit table index.
func FilterB(x uint) uint8 {
	return uint8(fb >> (x & 0xF) & 1)
}

// FilterC evaluates the 5-input combining function on a 5-bit table index.
func FilterC(x uint) uint8 {
	return uint8(fc >> (x & 0x1F) & 1)
}

// Filter computes the keystream bit for a register state. It does not
// modify the state.
func Filter(s State) uint8 {
	idx := uint(FilterA(s.tap4(0)))<<4 |
		uint(FilterB(s.tap4(8)))<<3 |
		uint(FilterA(s.tap4(16)))<<2 |
		uint(FilterA(s.tap4(24)))<<1 |
		uint(FilterB(s.tap4(32)))
	return FilterC(idx)
}

// tap4 packs positions i, i+2, i+4, i+6 into a table index, i most significant.
func (s State) tap4(i uint) uint {
	return uint(s>>i&1)<<3 |
		uint(s>>(i+2)&1)<<2 |
		uint(s>>(i+4)&1)<<1 |
		uint(s>>(i+6)&1)
}
