// Package pcsc reads card identifiers through a PC/SC reader. Only the UID
// is needed to simulate a MIFARE Classic authentication for a real card.
package pcsc

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ebfe/scard"
)

// ErrNoReaders is returned when PC/SC reports no attached reader.
var ErrNoReaders = errors.New("no readers found")

// Connection is a shared connection to the card on one reader.
type Connection struct {
	ctx    *scard.Context
	card   *scard.Card
	Reader string // Reader name as reported by PC/SC
	Index  int    // 0-based position in the reader list
}

// Readers lists the reader names PC/SC knows about, in index order.
func Readers() ([]string, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establish context: %w", err)
	}
	defer ctx.Release()

	return listReaders(ctx)
}

func listReaders(ctx *scard.Context) ([]string, error) {
	readers, err := ctx.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("list readers: %w", err)
	}
	if len(readers) == 0 {
		return nil, ErrNoReaders
	}
	return readers, nil
}

// selectReader picks readers[index] or explains why it cannot.
func selectReader(readers []string, index int) (string, error) {
	if len(readers) == 0 {
		return "", ErrNoReaders
	}
	if index < 0 || index >= len(readers) {
		return "", fmt.Errorf("reader index %d out of range (0..%d)", index, len(readers)-1)
	}
	return readers[index], nil
}

// Connect opens the card presented to reader index.
func Connect(index int) (*Connection, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establish context: %w", err)
	}

	readers, err := listReaders(ctx)
	if err == nil {
		var name string
		if name, err = selectReader(readers, index); err == nil {
			var card *scard.Card
			if card, err = ctx.Connect(name, scard.ShareShared, scard.ProtocolAny); err == nil {
				slog.Debug("card connected", "reader", name, "index", index)
				return &Connection{ctx: ctx, card: card, Reader: name, Index: index}, nil
			}
			err = fmt.Errorf("connect %q: %w", name, err)
		}
	}
	ctx.Release()
	return nil, err
}

// Close leaves the card powered and releases the PC/SC context.
func (c *Connection) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.card != nil {
		errs = append(errs, c.card.Disconnect(scard.LeaveCard))
		c.card = nil
	}
	if c.ctx != nil {
		errs = append(errs, c.ctx.Release())
		c.ctx = nil
	}
	return errors.Join(errs...)
}

// Transmit implements Card.
func (c *Connection) Transmit(apdu []byte) ([]byte, error) {
	if c == nil || c.card == nil {
		return nil, errors.New("card not connected")
	}
	return c.card.Transmit(apdu)
}

// ReadReaderUID connects to reader index, reads the UID the card
// authenticates with and disconnects. The reader name is returned for
// display.
func ReadReaderUID(index int) (uint32, string, error) {
	conn, err := Connect(index)
	if err != nil {
		return 0, "", err
	}
	uid, err := ReadUID(conn)
	if cerr := conn.Close(); cerr != nil {
		slog.Debug("close reader", "reader", conn.Reader, "err", cerr)
	}
	if err != nil {
		return 0, conn.Reader, err
	}
	return uid, conn.Reader, nil
}
