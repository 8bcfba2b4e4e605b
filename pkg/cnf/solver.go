package cnf

import (
	"context"
	"fmt"
)

// Outcome is the result of one solve.
type Outcome struct {
	Sat bool
	// Model holds the value of every variable when Sat is set. Index 0 is
	// unused so Model[v] is variable v.
	Model []bool
}

// Solver is the contract the attack needs from a SAT solver. Literals use
// DIMACS numbering: v or -v for variable v >= 1.
type Solver interface {
	AddClause(lits []int) error
	AddXorClause(lits []int, rhs bool) error
	// Solve searches under assumptions that hold for this call only.
	Solve(ctx context.Context, assumptions []int) (Outcome, error)
}

// Load adds every clause and XOR clause of rel to s. Known literals are left
// out.
func Load(s Solver, rel *Relation) error {
	for i, c := range rel.Clauses {
		if err := s.AddClause(c); err != nil {
			return fmt.Errorf("clause %d: %w", i, err)
		}
	}
	for i, xc := range rel.XorClauses {
		if err := s.AddXorClause(xc.Vars, xc.RHS); err != nil {
			return fmt.Errorf("xor clause %d: %w", i, err)
		}
	}
	return nil
}
