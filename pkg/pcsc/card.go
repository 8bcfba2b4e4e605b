package pcsc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
)

// SWSuccess is the ISO 7816 success status word.
const SWSuccess = 0x9000

// Card abstracts card transmit behavior for real PC/SC cards and test doubles.
type Card interface {
	Transmit(apdu []byte) ([]byte, error)
}

// SWError is a non-success status word returned for a command.
type SWError struct {
	Cmd byte   // Command INS byte
	SW  uint16 // Status word
}

func (e *SWError) Error() string {
	return fmt.Sprintf("card command 0x%02X failed with SW=0x%04X", e.Cmd, e.SW)
}

// IsSWError reports whether err carries a status word, and returns it.
func IsSWError(err error) (uint16, bool) {
	var swErr *SWError
	if errors.As(err, &swErr) {
		return swErr.SW, true
	}
	return 0, false
}

// Transmit sends an APDU and splits off the status word.
// The response data does NOT include the trailing SW bytes.
func Transmit(card Card, apdu []byte) ([]byte, uint16, error) {
	resp, err := card.Transmit(apdu)
	if err != nil {
		return nil, 0, err
	}
	if len(resp) < 2 {
		return nil, 0, fmt.Errorf("short response: %d bytes", len(resp))
	}
	sw := uint16(resp[len(resp)-2])<<8 | uint16(resp[len(resp)-1])
	return resp[:len(resp)-2], sw, nil
}

// GetUID retrieves the card UID via GET DATA (FF CA 00 00).
func GetUID(card Card) ([]byte, error) {
	apdu := []byte{0xFF, 0xCA, 0x00, 0x00, 0x00}
	data, sw, err := Transmit(card, apdu)
	if err != nil {
		return nil, fmt.Errorf("get uid: %w", err)
	}
	if sw != SWSuccess {
		return nil, fmt.Errorf("get uid: %w", &SWError{Cmd: apdu[1], SW: sw})
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("get uid: empty response")
	}
	slog.Debug("uid read", "uid", fmt.Sprintf("%X", data))
	return data, nil
}

// ReadUID returns the 32-bit value a MIFARE Classic card mixes into its
// authentication: a 4-byte UID as-is, the last four bytes of a 7-byte UID.
func ReadUID(card Card) (uint32, error) {
	uid, err := GetUID(card)
	if err != nil {
		return 0, err
	}
	switch len(uid) {
	case 4, 7:
		return binary.BigEndian.Uint32(uid[len(uid)-4:]), nil
	default:
		return 0, fmt.Errorf("unsupported uid length %d", len(uid))
	}
}
