package crypto1

// PRNG models the tag nonce generator: a 16-bit LFSR with taps 16 14 13 11
// running in a 32-bit window.
type PRNG struct {
	reg uint32
}

// NewPRNG seeds a generator from a 32-bit nonce. Only the low 16 bits of the
// seed are loaded; the rest of the window starts at zero.
func NewPRNG(seed Value) (*PRNG, error) {
	s, err := seed.resolve(32)
	if err != nil {
		return nil, &InputError{Field: "seed", Cause: err}
	}
	return newPRNG(uint32(s)), nil
}

func newPRNG(seed uint32) *PRNG {
	return &PRNG{reg: Swap32(seed & 0xFFFF)}
}

// Run clocks the generator count times and returns the window in wire byte
// order.
func (p *PRNG) Run(count int) uint32 {
	for i := 0; i < count; i++ {
		fb := (p.reg>>16 ^ p.reg>>18 ^ p.reg>>19 ^ p.reg>>21) & 1
		p.reg = p.reg>>1 | fb<<31
	}
	return Swap32(p.reg)
}

// Word clocks 32 times.
func (p *PRNG) Word() uint32 {
	return p.Run(32)
}

// Byte clocks 8 times and returns the newest byte.
func (p *PRNG) Byte() byte {
	return byte(p.Run(8))
}

// Successor returns the generator output n clocks after seeding with nt.
func Successor(nt uint32, n int) uint32 {
	return newPRNG(nt).Run(n)
}
