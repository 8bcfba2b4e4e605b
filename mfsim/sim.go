package main

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/barnettlynn/mfcrypto1/pkg/crypto1"
)

type result struct {
	SessionID  string
	Transcript crypto1.Transcript
	Reader     []byte
	Card       []byte
}

// simulate runs the reader side of one handshake and checks it against an
// independent tag model holding the same key.
func simulate(key crypto1.Value, uid, nt, nr uint32) (*result, error) {
	session, err := crypto1.NewSession(key)
	if err != nil {
		return nil, err
	}
	tag, err := crypto1.NewTag(key)
	if err != nil {
		return nil, err
	}
	if err := tag.Challenge(uid, nt); err != nil {
		return nil, err
	}

	reader, err := session.ReaderAuth(uid, nt, nr)
	if err != nil {
		return nil, err
	}
	card, err := session.CardAuth()
	if err != nil {
		return nil, err
	}

	t := session.Transcript()
	tagAt, err := tag.Respond(t.EncNr, t.EncAr)
	if err != nil {
		return nil, fmt.Errorf("tag model: %w", err)
	}
	if !bytes.Equal(tagAt, card) {
		return nil, fmt.Errorf("tag model answered %X, reader side computed %X", tagAt, card)
	}
	if tag.Nr() != nr {
		return nil, fmt.Errorf("tag model decrypted nr %08X, expected %08X", tag.Nr(), nr)
	}

	return &result{SessionID: session.ID, Transcript: t, Reader: reader, Card: card}, nil
}

func parseKey(s string) (crypto1.Value, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	if len(s) > 14 {
		return nil, fmt.Errorf("key %q is longer than 12 hex digits", s)
	}
	key := crypto1.Text(s)
	if _, err := crypto1.New(key); err != nil {
		return nil, err
	}
	return key, nil
}

func parseHex32(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func hexOrRandom(s string, random func() (uint32, error)) (uint32, error) {
	if strings.TrimSpace(s) == "" {
		return random()
	}
	return parseHex32(s)
}

func randomWord() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// randomNonce picks a value the tag PRNG can actually emit: a random 16-bit
// seed clocked forward one word.
func randomNonce() (uint32, error) {
	w, err := randomWord()
	if err != nil {
		return 0, err
	}
	return crypto1.Successor(w&0xFFFF, 32), nil
}
