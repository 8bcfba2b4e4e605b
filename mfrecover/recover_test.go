package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/barnettlynn/mfcrypto1/internal/relgen"
	"github.com/barnettlynn/mfcrypto1/pkg/attack"
	"github.com/barnettlynn/mfcrypto1/pkg/crypto1"
)

var vector = crypto1.Transcript{
	UID:   0x6AD2F78D,
	Nt:    0x01200145,
	Nr:    0x797EDB15,
	EncNr: 0x815C6EE7,
	EncAr: 0x9EF04E77,
	EncAt: 0x98B2853A,
}

func newAttacker(t *testing.T) *attack.Attacker {
	t.Helper()
	rel, err := relgen.Build(attack.KeystreamBits)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	a, err := attack.New(rel)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return a
}

func TestVerifyKey(t *testing.T) {
	if err := verifyKey(0xA0A1A2A3A4A5, vector); err != nil {
		t.Fatalf("verifyKey returned error: %v", err)
	}
	if err := verifyKey(0xFFFFFFFFFFFF, vector); err == nil {
		t.Fatalf("expected mismatch for wrong key")
	}
}

func TestPostNonceState(t *testing.T) {
	s, err := postNonceState(0xA0A1A2A3A4A5, vector)
	if err != nil {
		t.Fatalf("postNonceState returned error: %v", err)
	}
	if s != 0x2E3EB992FC85 {
		t.Fatalf("expected 2e3eb992fc85, got %v", s)
	}
}

func TestHintLow(t *testing.T) {
	if hints := hintLow(0x2E3EB992FC85, 0); hints != nil {
		t.Fatalf("expected no hints, got %v", hints)
	}
	hints := hintLow(0x2E3EB992FC85, 16)
	if len(hints) != 1 || hints[0].Mask != 0xFFFF || hints[0].Value != 0xFC85 {
		t.Fatalf("unexpected hints %+v", hints)
	}
}

func TestRandomRoundIsConsistent(t *testing.T) {
	seed := bytes.Repeat([]byte{0x5A}, 18)
	round, err := randomRound(bytes.NewReader(seed))
	if err != nil {
		t.Fatalf("randomRound returned error: %v", err)
	}
	if round.Key>>crypto1.StateBits != 0 {
		t.Fatalf("key %x exceeds 48 bits", round.Key)
	}
	if err := verifyKey(round.Key, round.Transcript); err != nil {
		t.Fatalf("verifyKey returned error: %v", err)
	}
	if _, err := randomRound(bytes.NewReader(seed[:4])); err == nil {
		t.Fatalf("expected error for short random source")
	}
}

func TestRecoverKeyWithHints(t *testing.T) {
	a := newAttacker(t)
	hints := hintLow(0x2E3EB992FC85, 20)
	res, err := recoverKey(context.Background(), a, vector, time.Minute, hints...)
	if err != nil {
		t.Fatalf("recoverKey returned error: %v", err)
	}
	if res.Key != 0xA0A1A2A3A4A5 {
		t.Fatalf("expected a0a1a2a3a4a5, got %012x", res.Key)
	}
}

func TestRunSelftest(t *testing.T) {
	a := newAttacker(t)
	if err := runSelftest(context.Background(), a, 2, 20, time.Minute); err != nil {
		t.Fatalf("runSelftest returned error: %v", err)
	}
}
