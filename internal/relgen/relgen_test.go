package relgen

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/barnettlynn/mfcrypto1/pkg/cnf"
	"github.com/barnettlynn/mfcrypto1/pkg/crypto1"
)

func TestBuildShape(t *testing.T) {
	rel, err := Build(64)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if rel.NumVars != 495 {
		t.Fatalf("expected 495 variables, got %d", rel.NumVars)
	}
	if len(rel.Clauses) != 7168 {
		t.Fatalf("expected 7168 clauses, got %d", len(rel.Clauses))
	}
	if len(rel.XorClauses) != 63 {
		t.Fatalf("expected 63 xor clauses, got %d", len(rel.XorClauses))
	}
	if len(rel.Known) != 64 || rel.KnownOffset != 49 {
		t.Fatalf("expected 64 known from 49, got %d from %d", len(rel.Known), rel.KnownOffset)
	}
	if rel.Names[1] != "sr[47]" || rel.Names[49] != "ks[0]" {
		t.Fatalf("unexpected names %q %q", rel.Names[1], rel.Names[49])
	}
}

func TestBuildRejectsZeroOutputs(t *testing.T) {
	if _, err := Build(0); err == nil {
		t.Fatalf("expected error for zero outputs")
	}
}

func TestWriteParses(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, 16); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	rel, err := cnf.Parse(&buf)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want, _ := Build(16)
	if rel.NumVars != want.NumVars || len(rel.Clauses) != len(want.Clauses) || len(rel.XorClauses) != len(want.XorClauses) {
		t.Fatalf("expected %d/%d/%d, got %d/%d/%d",
			want.NumVars, len(want.Clauses), len(want.XorClauses),
			rel.NumVars, len(rel.Clauses), len(rel.XorClauses))
	}
	if rel.KnownOffset != KnownOffset {
		t.Fatalf("expected known offset %d, got %d", KnownOffset, rel.KnownOffset)
	}
}

// stateLiterals fixes variables 1..48 to the register s.
func stateLiterals(s crypto1.State) []int {
	lits := make([]int, crypto1.StateBits)
	for j := 1; j <= crypto1.StateBits; j++ {
		lits[j-1] = j
		if s.Bit(crypto1.StateBits-j) == 0 {
			lits[j-1] = -j
		}
	}
	return lits
}

func TestRelationMatchesCipher(t *testing.T) {
	const outputs = 40
	rel, err := Build(outputs)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	solver := cnf.NewGini(rel.NumVars)
	if err := cnf.Load(solver, rel); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5; i++ {
		s := crypto1.State(rng.Uint64() & (1<<crypto1.StateBits - 1))
		c, err := crypto1.NewFromState(crypto1.Uint(s))
		if err != nil {
			t.Fatalf("NewFromState returned error: %v", err)
		}
		ks := c.Raw(outputs, nil)

		out, err := solver.Solve(context.Background(), stateLiterals(s))
		if err != nil {
			t.Fatalf("Solve returned error: %v", err)
		}
		if !out.Sat {
			t.Fatalf("state %v: expected satisfiable", s)
		}
		for k := 0; k < outputs; k++ {
			got := out.Model[KnownOffset+k]
			if got != (ks[k] == 1) {
				t.Fatalf("state %v: keystream bit %d expected %d, got %v", s, k, ks[k], got)
			}
		}

		// The opposite value of any keystream bit contradicts the state.
		flip := append(stateLiterals(s), -(KnownOffset + 7))
		if ks[7] == 0 {
			flip[len(flip)-1] = KnownOffset + 7
		}
		out, err = solver.Solve(context.Background(), flip)
		if err != nil {
			t.Fatalf("Solve returned error: %v", err)
		}
		if out.Sat {
			t.Fatalf("state %v: expected flipped keystream bit to be unsatisfiable", s)
		}
	}
}
