package crypto1

// Cipher is one Crypto1 engine. It owns its register exclusively and is
// mutated by every Bit, Byte, Word and Reverse call.
type Cipher struct {
	state State
}

// New creates an engine from a 48-bit user key. The key is mapped into the
// register with KeyDerive.
func New(key Value) (*Cipher, error) {
	k, err := key.resolve(StateBits)
	if err != nil {
		return nil, &InputError{Field: "key", Cause: err}
	}
	return &Cipher{state: KeyDerive(k)}, nil
}

// NewFromState creates an engine whose register is loaded directly, without
// key derivation. Bit i of the value becomes register position i.
func NewFromState(state Value) (*Cipher, error) {
	s, err := state.resolve(StateBits)
	if err != nil {
		return nil, &InputError{Field: "state", Cause: err}
	}
	return &Cipher{state: State(s)}, nil
}

// KeyDerive maps a user key to the initial register: position i receives
// key bit i^7.
func KeyDerive(key uint64) State {
	var s State
	for i := 0; i < StateBits; i++ {
		s |= State(key>>uint(i^7)&1) << uint(i)
	}
	return s
}

// KeyReverse is the inverse of KeyDerive.
func KeyReverse(s State) uint64 {
	var key uint64
	for i := 0; i < StateBits; i++ {
		key |= uint64(s>>uint(i)&1) << uint(i^7)
	}
	return key
}

// State returns the current register contents.
func (c *Cipher) State() State {
	return c.state
}

// Key reads the current register back as a user key.
func (c *Cipher) Key() uint64 {
	return KeyReverse(c.state)
}

// Bit produces one keystream bit and clocks the register, feeding in. With
// encrypted set, the keystream bit is also XORed into the new bit, which is
// how a tag consumes ciphertext. The returned bit is the filter output of the
// pre-clock state.
func (c *Cipher) Bit(in uint8, encrypted bool) uint8 {
	out := Filter(c.state)
	c.state.ClockForward(in)
	if encrypted {
		c.state ^= State(out)
	}
	return out
}

// Byte runs Bit over in, least significant bit first. Output bit i is the
// keystream produced while consuming input bit i.
func (c *Cipher) Byte(in byte, encrypted bool) byte {
	var out byte
	for i := 0; i < 8; i++ {
		out |= c.Bit(in>>uint(i)&1, encrypted) << uint(i)
	}
	return out
}

// Word runs Byte over in, most significant byte first.
func (c *Cipher) Word(in uint32, encrypted bool) uint32 {
	var out uint32
	for shift := 24; shift >= 0; shift -= 8 {
		out |= uint32(c.Byte(byte(in>>uint(shift)), encrypted)) << uint(shift)
	}
	return out
}

// ReverseBit steps the register back by one clock. in is the bit that was
// fed in. xorFilter must match the encrypted flag of the forward step: the
// filter output of the restored state is then removed from the recovered bit
// as well.
func (c *Cipher) ReverseBit(in uint8, xorFilter bool) {
	c.state.ClockBackward(in)
	if xorFilter {
		c.state ^= State(Filter(c.state)) << 47
	}
}

// Reverse8 undoes Byte(in, xorFilter), walking the byte from its most
// significant bit.
func (c *Cipher) Reverse8(in byte, xorFilter bool) {
	for i := 7; i >= 0; i-- {
		c.ReverseBit(in>>uint(i)&1, xorFilter)
	}
}

// Reverse32 undoes Word(in, xorFilter), walking bytes from the least
// significant one.
func (c *Cipher) Reverse32(in uint32, xorFilter bool) {
	for shift := 0; shift < 32; shift += 8 {
		c.Reverse8(byte(in>>uint(shift)), xorFilter)
	}
}

// Raw produces count keystream bits. input is read most significant first
// and consumed from its end, so its last element is fed first; positions
// past the start of input feed zero.
func (c *Cipher) Raw(count int, input []uint8) []uint8 {
	out := make([]uint8, count)
	for i := range out {
		var in uint8
		if j := len(input) - 1 - i; j >= 0 {
			in = input[j] & 1
		}
		out[i] = c.Bit(in, false)
	}
	return out
}
