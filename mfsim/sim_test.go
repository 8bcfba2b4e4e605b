package main

import (
	"bytes"
	"testing"

	"github.com/barnettlynn/mfcrypto1/pkg/crypto1"
)

func TestSimulateKnownVector(t *testing.T) {
	key, err := parseKey("A0A1A2A3A4A5")
	if err != nil {
		t.Fatalf("parseKey returned error: %v", err)
	}
	res, err := simulate(key, 0x6AD2F78D, 0x01200145, 0x797EDB15)
	if err != nil {
		t.Fatalf("simulate returned error: %v", err)
	}
	if !bytes.Equal(res.Reader, []byte{0x81, 0x5C, 0x6E, 0xE7, 0x9E, 0xF0, 0x4E, 0x77}) {
		t.Fatalf("unexpected reader bytes %X", res.Reader)
	}
	if !bytes.Equal(res.Card, []byte{0x98, 0xB2, 0x85, 0x3A}) {
		t.Fatalf("unexpected card bytes %X", res.Card)
	}
}

func TestParseKey(t *testing.T) {
	for _, s := range []string{"ffffffffffff", "0xA0A1A2A3A4A5", " 123456789abc "} {
		if _, err := parseKey(s); err != nil {
			t.Fatalf("parseKey(%q) returned error: %v", s, err)
		}
	}
	for _, s := range []string{"", "xyz", "1ffffffffffff", "0x0001ffffffffffff"} {
		if _, err := parseKey(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestParseHex32(t *testing.T) {
	v, err := parseHex32("0x01200145")
	if err != nil || v != 0x01200145 {
		t.Fatalf("expected 01200145, got %08x (err=%v)", v, err)
	}
	if _, err := parseHex32("100000000"); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestRandomNonceIsPRNGOutput(t *testing.T) {
	for i := 0; i < 16; i++ {
		nt, err := randomNonce()
		if err != nil {
			t.Fatalf("randomNonce returned error: %v", err)
		}
		// The low half seeds the next 16 bits; the window is consistent with
		// the generator when reseeding from its own low half reproduces it.
		if got := crypto1.Successor(nt>>16, 16); got&0xFFFF != nt&0xFFFF {
			t.Fatalf("nonce %08x is not a generator window", nt)
		}
	}
}

func TestHexOrRandom(t *testing.T) {
	called := false
	v, err := hexOrRandom("", func() (uint32, error) {
		called = true
		return 7, nil
	})
	if err != nil || !called || v != 7 {
		t.Fatalf("expected random fallback, got %d (called=%v err=%v)", v, called, err)
	}
}
