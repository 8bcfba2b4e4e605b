// Package transcript stores observed authentications as YAML.
//
//	uid: 6ad2f78d
//	nt: "01200145"
//	enc_nr: 815c6ee7
//	enc_ar: 9ef04e77
//	enc_at: 98b2853a
//
// nr is optional; a sniffer never sees it.
package transcript

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/barnettlynn/mfcrypto1/pkg/crypto1"
)

// Hex32 is a 32-bit value written as 8 hex digits. An optional 0x prefix is
// accepted on input.
type Hex32 uint32

func (h Hex32) MarshalYAML() (any, error) {
	return fmt.Sprintf("%08x", uint32(h)), nil
}

func (h *Hex32) UnmarshalYAML(node *yaml.Node) error {
	s := strings.TrimSpace(node.Value)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" || len(s) > 8 {
		return fmt.Errorf("line %d: expected up to 8 hex digits, got %q", node.Line, node.Value)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("line %d: invalid hex %q: %w", node.Line, node.Value, err)
	}
	*h = Hex32(v)
	return nil
}

type file struct {
	UID   *Hex32 `yaml:"uid"`
	Nt    *Hex32 `yaml:"nt"`
	Nr    *Hex32 `yaml:"nr,omitempty"`
	EncNr *Hex32 `yaml:"enc_nr"`
	EncAr *Hex32 `yaml:"enc_ar"`
	EncAt *Hex32 `yaml:"enc_at"`
}

// Record is a stored handshake. HasNr is set when the file carries the
// reader nonce, which may legitimately be zero.
type Record struct {
	crypto1.Transcript
	HasNr bool
}

// Load reads a transcript file.
func Load(path string) (Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("read transcript: %w", err)
	}
	return Parse(content)
}

// Parse decodes a transcript document.
func Parse(content []byte) (Record, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return Record{}, fmt.Errorf("parse transcript yaml: %w", err)
	}

	required := []struct {
		name string
		v    *Hex32
	}{
		{"uid", f.UID},
		{"nt", f.Nt},
		{"enc_nr", f.EncNr},
		{"enc_ar", f.EncAr},
		{"enc_at", f.EncAt},
	}
	for _, r := range required {
		if r.v == nil {
			return Record{}, fmt.Errorf("transcript.%s is required", r.name)
		}
	}

	rec := Record{Transcript: crypto1.Transcript{
		UID:   uint32(*f.UID),
		Nt:    uint32(*f.Nt),
		EncNr: uint32(*f.EncNr),
		EncAr: uint32(*f.EncAr),
		EncAt: uint32(*f.EncAt),
	}}
	if f.Nr != nil {
		rec.Nr = uint32(*f.Nr)
		rec.HasNr = true
	}
	return rec, nil
}

// Save writes t to path. withNr controls whether the reader nonce is kept.
func Save(path string, t crypto1.Transcript, withNr bool) error {
	hex := func(v uint32) *Hex32 {
		h := Hex32(v)
		return &h
	}
	f := file{
		UID:   hex(t.UID),
		Nt:    hex(t.Nt),
		EncNr: hex(t.EncNr),
		EncAr: hex(t.EncAr),
		EncAt: hex(t.EncAt),
	}
	if withNr {
		f.Nr = hex(t.Nr)
	}

	content, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}
