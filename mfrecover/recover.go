package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/barnettlynn/mfcrypto1/pkg/attack"
	"github.com/barnettlynn/mfcrypto1/pkg/crypto1"
)

// recoverKey runs one attack, bounded by timeout when it is positive.
func recoverKey(ctx context.Context, a *attack.Attacker, t crypto1.Transcript, timeout time.Duration, hints ...attack.Hint) (*attack.Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return a.Recover(ctx, t, hints...)
}

// verifyKey replays the handshake with the recovered key and the known reader
// nonce and compares every encrypted value.
func verifyKey(key uint64, t crypto1.Transcript) error {
	s, err := crypto1.NewSession(crypto1.Uint(key))
	if err != nil {
		return err
	}
	if _, err := s.ReaderAuth(t.UID, t.Nt, t.Nr); err != nil {
		return err
	}
	if _, err := s.CardAuth(); err != nil {
		return err
	}
	if got := s.Transcript(); got != t {
		return fmt.Errorf("replay gave enc_nr=%08X enc_ar=%08X enc_at=%08X", got.EncNr, got.EncAr, got.EncAt)
	}
	return nil
}

// postNonceState is the register right after uid^nt and nr were fed.
func postNonceState(key uint64, t crypto1.Transcript) (crypto1.State, error) {
	c, err := crypto1.New(crypto1.Uint(key))
	if err != nil {
		return 0, err
	}
	c.Word(t.UID^t.Nt, false)
	c.Word(t.Nr, false)
	return c.State(), nil
}

// hintLow pins the lowest bits register positions of state.
func hintLow(state crypto1.State, bits int) []attack.Hint {
	if bits == 0 {
		return nil
	}
	mask := crypto1.State(1)<<uint(bits) - 1
	return []attack.Hint{{Mask: mask, Value: state & mask}}
}

type selftestRound struct {
	Key        uint64
	Transcript crypto1.Transcript
}

func randomRound(r io.Reader) (selftestRound, error) {
	var b [18]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return selftestRound{}, fmt.Errorf("read random: %w", err)
	}
	key := binary.BigEndian.Uint64(b[0:8]) & (1<<crypto1.StateBits - 1)
	uid := binary.BigEndian.Uint32(b[8:12])
	nt := crypto1.Successor(uint32(binary.BigEndian.Uint16(b[12:14])), 32)
	nr := binary.BigEndian.Uint32(b[14:18])

	s, err := crypto1.NewSession(crypto1.Uint(key))
	if err != nil {
		return selftestRound{}, err
	}
	if _, err := s.ReaderAuth(uid, nt, nr); err != nil {
		return selftestRound{}, err
	}
	if _, err := s.CardAuth(); err != nil {
		return selftestRound{}, err
	}
	return selftestRound{Key: key, Transcript: s.Transcript()}, nil
}

// runSelftest simulates rounds random sessions and attacks each one with
// hintBits known state bits.
func runSelftest(ctx context.Context, a *attack.Attacker, rounds, hintBits int, timeout time.Duration) error {
	var bar *pb.ProgressBar
	if term.IsTerminal(int(os.Stdout.Fd())) {
		bar = pb.StartNew(rounds)
		defer bar.Finish()
	}

	var total time.Duration
	for i := 0; i < rounds; i++ {
		round, err := randomRound(rand.Reader)
		if err != nil {
			return err
		}
		state, err := postNonceState(round.Key, round.Transcript)
		if err != nil {
			return err
		}

		res, err := recoverKey(ctx, a, round.Transcript, timeout, hintLow(state, hintBits)...)
		if err != nil {
			return fmt.Errorf("round %d (key %012X): %w", i, round.Key, err)
		}
		if res.Key != round.Key {
			return fmt.Errorf("round %d: recovered %012X, expected %012X", i, res.Key, round.Key)
		}
		total += res.Elapsed
		slog.Debug("selftest round", "round", i, "run", res.RunID, "elapsed", res.Elapsed.String())

		if bar != nil {
			bar.Increment()
		}
	}

	fmt.Printf("Selftest: %d/%d keys recovered with %d known state bits, mean %s\n",
		rounds, rounds, hintBits, total/time.Duration(rounds))
	return nil
}
