package cnf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// maxXorChunk bounds the variables encoded together when an XOR clause is
// cut into CNF; each chunk costs 2^(n-1) clauses.
const maxXorChunk = 4

// pollInterval is how often a cancellable solve checks its context.
const pollInterval = 20 * time.Millisecond

// Gini implements Solver on github.com/go-air/gini. It is not safe for
// concurrent use.
type Gini struct {
	g       *gini.Gini
	numVars int
	nextAux int
}

// NewGini creates a solver for variables 1..numVars. Auxiliary variables for
// XOR encoding are numbered above numVars.
func NewGini(numVars int) *Gini {
	s := &Gini{g: gini.New(), numVars: numVars, nextAux: numVars + 1}
	if numVars > 0 {
		// Size the variable table up front so every model lookup is in range.
		s.add([]int{numVars, -numVars})
	}
	return s
}

// AddClause adds a disjunction of literals.
func (s *Gini) AddClause(lits []int) error {
	if len(lits) == 0 {
		return errors.New("empty clause")
	}
	if err := s.check(lits); err != nil {
		return err
	}
	s.add(lits)
	return nil
}

// AddXorClause adds the constraint that the literals XOR to rhs. A negated
// literal flips rhs.
func (s *Gini) AddXorClause(lits []int, rhs bool) error {
	if err := s.check(lits); err != nil {
		return err
	}
	vars := make([]int, len(lits))
	for i, l := range lits {
		if l < 0 {
			rhs = !rhs
		}
		vars[i] = abs(l)
	}

	for len(vars) > maxXorChunk {
		aux := s.nextAux
		s.nextAux++
		// aux = v0^v1^v2, i.e. v0^v1^v2^aux = false
		s.addXor(append(vars[:maxXorChunk-1:maxXorChunk-1], aux), false)
		vars = append([]int{aux}, vars[maxXorChunk-1:]...)
	}
	s.addXor(vars, rhs)
	return nil
}

// addXor forbids every assignment of vars whose parity differs from rhs.
func (s *Gini) addXor(vars []int, rhs bool) {
	n := len(vars)
	want := 0
	if rhs {
		want = 1
	}
	clause := make([]int, n)
	for assign := 0; assign < 1<<uint(n); assign++ {
		if bits.OnesCount(uint(assign))&1 == want {
			continue
		}
		for i, v := range vars {
			if assign>>uint(i)&1 == 1 {
				clause[i] = -v
			} else {
				clause[i] = v
			}
		}
		s.add(clause)
	}
}

func (s *Gini) add(lits []int) {
	for _, l := range lits {
		s.g.Add(z.Dimacs2Lit(l))
	}
	s.g.Add(z.LitNull)
}

func (s *Gini) check(lits []int) error {
	for _, l := range lits {
		if l == 0 || abs(l) > s.numVars {
			return fmt.Errorf("literal %d: %w", l, ErrUnknownVariable)
		}
	}
	return nil
}

// Solve runs the solver under assumptions. A context that can be cancelled
// is polled while gini works in the background; a cancelled or expired
// context stops the search and its error is returned.
func (s *Gini) Solve(ctx context.Context, assumptions []int) (Outcome, error) {
	if err := s.check(assumptions); err != nil {
		return Outcome{}, err
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	for _, l := range assumptions {
		s.g.Assume(z.Dimacs2Lit(l))
	}

	start := time.Now()
	var res int
	if ctx.Done() == nil {
		res = s.g.Solve()
	} else {
		var err error
		if res, err = s.solveAsync(ctx); err != nil {
			return Outcome{}, err
		}
	}
	slog.Debug("gini solve",
		"assumptions", len(assumptions),
		"result", res,
		"elapsed", time.Since(start).String())

	switch res {
	case 1:
		model := make([]bool, s.numVars+1)
		for v := 1; v <= s.numVars; v++ {
			model[v] = s.g.Value(z.Dimacs2Lit(v))
		}
		return Outcome{Sat: true, Model: model}, nil
	case -1:
		return Outcome{}, nil
	default:
		return Outcome{}, fmt.Errorf("solver returned unknown result %d", res)
	}
}

func (s *Gini) solveAsync(ctx context.Context) (int, error) {
	solve := s.g.GoSolve()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			solve.Stop()
			return 0, ctx.Err()
		case <-ticker.C:
			if res, done := solve.Test(); done {
				return res, nil
			}
		}
	}
}
