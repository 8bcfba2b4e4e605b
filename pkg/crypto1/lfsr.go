package crypto1

import "fmt"

// State is the 48-bit Crypto1 register. Bit i is register position i,
// position 0 being the newest bit.
type State uint64

// StateBits is the register width.
const StateBits = 48

const stateMask State = 1<<StateBits - 1

// Taps lists the feedback taps, 1-based from the newest bit.
var Taps = [...]uint{48, 43, 39, 38, 36, 34, 33, 31, 29, 24, 23, 21, 19, 13, 9, 7, 6, 5}

var (
	// forwardMask selects tap t at position t-1 of the pre-shift register.
	forwardMask = tapMask(0, 1)
	// backwardMask selects taps after the first at position t of the shifted register.
	backwardMask = tapMask(1, 0)
)

func tapMask(skip int, offset uint) State {
	var m State
	for _, t := range Taps[skip:] {
		m |= 1 << (t - offset)
	}
	return m
}

// ClockForward shifts the register one step. The feedback bit is computed
// from the pre-shift state and XORed with in before it enters position 0.
// It returns the bit dropped from position 47.
func (s *State) ClockForward(in uint8) uint8 {
	dropped := uint8(*s >> 47 & 1)
	fb := parity(*s & forwardMask)
	*s = (*s<<1 | State(fb^in&1)) & stateMask
	return dropped
}

// ClockBackward undoes one ClockForward that was fed in. It returns the
// reconstructed bit, which is written back into position 47.
func (s *State) ClockBackward(in uint8) uint8 {
	b := parity(*s&backwardMask) ^ uint8(*s&1)
	*s >>= 1
	old := b ^ in&1
	*s |= State(old) << 47
	return old
}

// Bit returns register position i.
func (s State) Bit(i int) uint8 {
	return uint8(s >> uint(i) & 1)
}

func (s State) String() string {
	return fmt.Sprintf("%012x", uint64(s&stateMask))
}
