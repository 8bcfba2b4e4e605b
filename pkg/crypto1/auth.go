package crypto1

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Transcript holds the values of one authentication. Nr is known to the
// reader only; an eavesdropper sees the other five.
type Transcript struct {
	UID   uint32
	Nt    uint32
	Nr    uint32
	EncNr uint32
	EncAr uint32
	EncAt uint32
}

// AuthError represents a failure at a specific authentication step.
type AuthError struct {
	Step  string // "reader", "card" or "tag"
	Cause error  // Underlying error
}

func (e *AuthError) Error() string {
	if e == nil {
		return "auth error"
	}
	return fmt.Sprintf("auth %s failed: %v", e.Step, e.Cause)
}

func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ClassifyAuthError extracts the failing step from an AuthError.
func ClassifyAuthError(err error) (step string, ok bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Step, true
	}
	return "", false
}

// Session simulates the reader side of one authentication. The cipher and
// the PRNG are coupled: CardAuth continues from exactly where ReaderAuth
// left both of them.
type Session struct {
	ID string

	cipher   *Cipher
	prng     *PRNG
	t        Transcript
	cardDone bool
}

// NewSession creates a reader session for a 48-bit key.
func NewSession(key Value) (*Session, error) {
	c, err := New(key)
	if err != nil {
		return nil, err
	}
	return &Session{ID: uuid.NewString(), cipher: c}, nil
}

// ReaderAuth computes the reader's answer to tag nonce nt using reader
// nonce nr. It returns {nr}‖{ar} as 8 big-endian bytes.
func (s *Session) ReaderAuth(uid, nt, nr uint32) ([]byte, error) {
	if s.prng != nil {
		return nil, &AuthError{Step: "reader", Cause: ErrOutOfOrder}
	}

	s.cipher.Word(uid^nt, false)
	encNr := s.cipher.Word(nr, false) ^ nr

	s.prng = newPRNG(nt)
	s.prng.Word()
	ar := s.prng.Word()
	encAr := ar ^ s.cipher.Word(0, false)

	s.t = Transcript{UID: uid, Nt: nt, Nr: nr, EncNr: encNr, EncAr: encAr}

	slog.Debug("reader auth",
		"session", s.ID,
		"uid", fmt.Sprintf("%08x", uid),
		"nt", fmt.Sprintf("%08x", nt),
		"nr", fmt.Sprintf("%08x", nr),
		"ar", fmt.Sprintf("%08x", ar),
		"enc_nr", fmt.Sprintf("%08x", encNr),
		"enc_ar", fmt.Sprintf("%08x", encAr))

	out := make([]byte, 8)
	binary.BigEndian.PutUint32(out[:4], encNr)
	binary.BigEndian.PutUint32(out[4:], encAr)
	return out, nil
}

// CardAuth computes the tag's answer {at} as 4 big-endian bytes, continuing
// the cipher and PRNG of ReaderAuth.
func (s *Session) CardAuth() ([]byte, error) {
	if s.prng == nil || s.cardDone {
		return nil, &AuthError{Step: "card", Cause: ErrOutOfOrder}
	}
	at := s.prng.Word()
	encAt := at ^ s.cipher.Word(0, false)
	s.t.EncAt = encAt
	s.cardDone = true

	slog.Debug("card auth",
		"session", s.ID,
		"at", fmt.Sprintf("%08x", at),
		"enc_at", fmt.Sprintf("%08x", encAt))

	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, encAt)
	return out, nil
}

// Transcript returns the values exchanged so far.
func (s *Session) Transcript() Transcript {
	return s.t
}

// Tag simulates the card side of one authentication with its own engine.
type Tag struct {
	cipher *Cipher
	nt     uint32
	nr     uint32
	state  int
}

const (
	tagIdle = iota
	tagChallenged
	tagAuthenticated
	tagHalted
)

// NewTag creates a tag holding a 48-bit key.
func NewTag(key Value) (*Tag, error) {
	c, err := New(key)
	if err != nil {
		return nil, err
	}
	return &Tag{cipher: c}, nil
}

// Challenge starts an authentication with tag nonce nt and feeds uid^nt into
// the cipher.
func (t *Tag) Challenge(uid, nt uint32) error {
	if t.state != tagIdle {
		return &AuthError{Step: "tag", Cause: ErrOutOfOrder}
	}
	t.cipher.Word(uid^nt, false)
	t.nt = nt
	t.state = tagChallenged
	return nil
}

// Respond decrypts the reader nonce, checks the reader answer against
// suc64(nt) and returns {at} as 4 big-endian bytes.
func (t *Tag) Respond(encNr, encAr uint32) ([]byte, error) {
	if t.state != tagChallenged {
		return nil, &AuthError{Step: "tag", Cause: ErrOutOfOrder}
	}
	t.nr = t.cipher.Word(encNr, true) ^ encNr

	prng := newPRNG(t.nt)
	prng.Word()
	want := prng.Word()
	if ar := encAr ^ t.cipher.Word(0, false); ar != want {
		slog.Debug("tag rejected reader", "ar", fmt.Sprintf("%08x", ar), "expected", fmt.Sprintf("%08x", want))
		t.state = tagHalted
		return nil, &AuthError{Step: "tag", Cause: ErrReaderMismatch}
	}

	encAt := prng.Word() ^ t.cipher.Word(0, false)
	t.state = tagAuthenticated

	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, encAt)
	return out, nil
}

// Nr returns the reader nonce decrypted by Respond.
func (t *Tag) Nr() uint32 {
	return t.nr
}
