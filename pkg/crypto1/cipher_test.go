package crypto1

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func TestKeyDeriveReversesBitsPerByte(t *testing.T) {
	cases := []struct {
		key   uint64
		state State
	}{
		{0x000000000000, 0x000000000000},
		{0xFFFFFFFFFFFF, 0xFFFFFFFFFFFF},
		{0x123456789ABC, 0x482C6A1E593D},
		{0xA0A1A2A3A4A5, 0x058545C525A5},
	}
	for _, tc := range cases {
		if got := KeyDerive(tc.key); got != tc.state {
			t.Fatalf("KeyDerive(%012x): expected %v, got %v", tc.key, tc.state, got)
		}
		if got := KeyReverse(tc.state); got != tc.key {
			t.Fatalf("KeyReverse(%v): expected %012x, got %012x", tc.state, tc.key, got)
		}
	}
}

func TestKeyInvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		k := rng.Uint64() & uint64(stateMask)
		if got := KeyReverse(KeyDerive(k)); got != k {
			t.Fatalf("key %012x came back as %012x", k, got)
		}
	}
}

func TestNewRejectsMalformedInput(t *testing.T) {
	inputs := []Value{
		Uint(1 << 48),
		Text(""),
		Text("0xZZ"),
		Text("0x1000000000000"),
		Bits{1, 0, 1},
		Bits(append(make([]uint8, 47), 2)),
	}
	for _, in := range inputs {
		c, err := New(in)
		if err == nil {
			t.Fatalf("expected error for %#v", in)
		}
		if c != nil {
			t.Fatalf("expected no engine for %#v", in)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %#v, got %v", in, err)
		}
	}
	if _, err := NewFromState(Uint(1 << 48)); !IsInvalidInput(err) {
		t.Fatalf("expected NewFromState to reject 49-bit state, got %v", err)
	}
}

func TestInputRepresentationsAgree(t *testing.T) {
	const key = 0xA0A1A2A3A4A5
	reprs := []Value{
		Uint(key),
		Text("0xA0A1A2A3A4A5"),
		Text("176616078812325"),
		Bits(Uint2Bits(key, StateBits)),
	}
	for _, r := range reprs {
		c, err := New(r)
		if err != nil {
			t.Fatalf("New(%#v) returned error: %v", r, err)
		}
		if c.Key() != key {
			t.Fatalf("New(%#v): expected key %012x, got %012x", r, uint64(key), c.Key())
		}
	}
}

func TestNewFromStateSkipsDerivation(t *testing.T) {
	c, err := NewFromState(Text("0x2e3eb992fc85"))
	if err != nil {
		t.Fatalf("NewFromState returned error: %v", err)
	}
	if c.State() != 0x2E3EB992FC85 {
		t.Fatalf("expected raw state 2e3eb992fc85, got %v", c.State())
	}
}

func TestClockBackwardInvertsClockForward(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 10000; i++ {
		orig := State(rng.Uint64()) & stateMask
		in := uint8(rng.Intn(2))
		s := orig
		dropped := s.ClockForward(in)
		if s&^stateMask != 0 {
			t.Fatalf("state %v grew past 48 bits", s)
		}
		recovered := s.ClockBackward(in)
		if s != orig {
			t.Fatalf("state %v: expected %v after backward clock", s, orig)
		}
		if recovered != dropped {
			t.Fatalf("expected recovered bit %d, got %d", dropped, recovered)
		}
	}
}

func TestReverseBitRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 10000; i++ {
		orig := State(rng.Uint64()) & stateMask
		in := uint8(rng.Intn(2))
		encrypted := rng.Intn(2) == 1
		c := &Cipher{state: orig}
		c.Bit(in, encrypted)
		c.ReverseBit(in, encrypted)
		if c.state != orig {
			t.Fatalf("state %v in=%d encrypted=%v: got %v after reversal", orig, in, encrypted, c.state)
		}
	}
}

func TestReverse32UndoesWord(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		orig := State(rng.Uint64()) & stateMask
		in := rng.Uint32()
		encrypted := rng.Intn(2) == 1
		c := &Cipher{state: orig}
		c.Word(in, encrypted)
		c.Reverse32(in, encrypted)
		if c.state != orig {
			t.Fatalf("state %v word %08x encrypted=%v: got %v", orig, in, encrypted, c.state)
		}
	}
}

func TestReverse32WithCiphertextUndoesPlainFeed(t *testing.T) {
	// Reversing the reader's nonce step from the ciphertext requires the
	// filter correction because ct = pt ^ keystream.
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 1000; i++ {
		orig := State(rng.Uint64()) & stateMask
		nr := rng.Uint32()
		c := &Cipher{state: orig}
		encNr := c.Word(nr, false) ^ nr
		c.Reverse32(encNr, true)
		if c.state != orig {
			t.Fatalf("state %v nr %08x: got %v", orig, nr, c.state)
		}
	}
}

func TestByteAndWordVectors(t *testing.T) {
	const uid, nt = 0x6AD2F78D, 0x01200145
	c, err := New(Uint(0x112233445566))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	want := []byte{0x84, 0x51, 0x18, 0x66}
	for i, in := range []byte{0x11, 0x22, 0x33, 0x44} {
		if got := c.Byte(in, false); got != want[i] {
			t.Fatalf("byte %d: expected %02x, got %02x", i, want[i], got)
		}
	}
	if got := c.Word(uid^nt, false); got != 0x2736E055 {
		t.Fatalf("expected word 2736e055, got %08x", got)
	}
	if got := c.Word(uid^nt, true); got != 0x1DDA3C7E {
		t.Fatalf("expected encrypted word 1dda3c7e, got %08x", got)
	}
}

func TestFirstKeystreamWord(t *testing.T) {
	cases := map[uint64]uint32{
		0x000000000000: 0x00000000,
		0xFFFFFFFFFFFF: 0xFF3FE936,
		0x123456789ABC: 0xE2CE88B5,
	}
	for key, want := range cases {
		c, err := New(Uint(key))
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		if got := c.Word(0, false); got != want {
			t.Fatalf("key %012x: expected %08x, got %08x", key, want, got)
		}
	}
}

func TestRaw(t *testing.T) {
	c, _ := New(Uint(0x112233445566))
	want := []uint8{0, 0, 1, 0, 0, 0, 0, 1, 1, 1, 0, 1, 1, 1, 1, 0}
	if got := c.Raw(16, nil); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	c, _ = New(Uint(0x112233445566))
	want = []uint8{0, 0, 1, 0, 1, 0, 0, 1}
	if got := c.Raw(8, []uint8{1, 0, 1, 1, 0, 0, 1, 0}); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v with input, got %v", want, got)
	}
}

func TestRawMatchesByteOrder(t *testing.T) {
	// Raw over the bits of a byte (most significant first, consumed from the
	// end) is Byte bit by bit.
	a, _ := New(Uint(0xA0A1A2A3A4A5))
	b, _ := New(Uint(0xA0A1A2A3A4A5))
	out := a.Byte(0xC5, false)
	raw := b.Raw(8, Uint2Bits(0xC5, 8))
	for i := 0; i < 8; i++ {
		if raw[i] != out>>uint(i)&1 {
			t.Fatalf("bit %d: Raw gave %d, Byte gave %d", i, raw[i], out>>uint(i)&1)
		}
	}
	if a.State() != b.State() {
		t.Fatalf("engines diverged: %v vs %v", a.State(), b.State())
	}
}
