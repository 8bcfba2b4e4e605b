// Package relgen writes the relation between a Crypto1 register and the
// keystream it produces while running without input.
//
// Variables 1..48 are the register at time 0, variable j holding position
// 48-j. Variables 49..48+n are keystream bits 0..n-1 in generation order and
// are listed as unit clauses, which marks them as the known run. Register
// bits that become linear combinations after clocking get an auxiliary
// variable tied by an XOR clause; each filter function becomes its truth
// table in clause form.
package relgen

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/barnettlynn/mfcrypto1/pkg/cnf"
	"github.com/barnettlynn/mfcrypto1/pkg/crypto1"
)

// KnownOffset is the first keystream variable.
const KnownOffset = crypto1.StateBits + 1

// filterGroup is one first-layer function and the register positions it reads.
type filterGroup struct {
	fn        func(uint) uint8
	positions [4]int
}

var groups = [...]filterGroup{
	{crypto1.FilterA, [4]int{0, 2, 4, 6}},
	{crypto1.FilterB, [4]int{8, 10, 12, 14}},
	{crypto1.FilterA, [4]int{16, 18, 20, 22}},
	{crypto1.FilterA, [4]int{24, 26, 28, 30}},
	{crypto1.FilterB, [4]int{32, 34, 36, 38}},
}

type builder struct {
	rel   *cnf.Relation
	cache map[uint64]int
}

// Build derives the relation for outputs keystream bits.
func Build(outputs int) (*cnf.Relation, error) {
	if outputs < 1 {
		return nil, fmt.Errorf("outputs must be positive, got %d", outputs)
	}

	b := &builder{
		rel: &cnf.Relation{
			NumVars:     crypto1.StateBits + outputs,
			KnownOffset: KnownOffset,
			Names:       map[int]string{},
		},
		cache: map[uint64]int{},
	}
	for j := 1; j <= crypto1.StateBits; j++ {
		b.rel.Names[j] = fmt.Sprintf("sr[%d]", crypto1.StateBits-j)
	}
	for t := 0; t < outputs; t++ {
		b.rel.Known = append(b.rel.Known, KnownOffset+t)
		b.rel.Names[KnownOffset+t] = fmt.Sprintf("ks[%d]", t)
	}

	// masks[p] is register position p as a combination of time-0 positions.
	var masks [crypto1.StateBits]uint64
	for p := range masks {
		masks[p] = 1 << uint(p)
	}

	for t := 0; t < outputs; t++ {
		var layer [len(groups)]int
		for g, grp := range groups {
			var in [4]int
			for i, p := range grp.positions {
				in[i] = b.varFor(masks[p])
			}
			layer[g] = b.newVar()
			b.table(grp.fn, in[:], layer[g])
		}
		b.table(crypto1.FilterC, layer[:], KnownOffset+t)

		var fb uint64
		for _, tap := range crypto1.Taps {
			fb ^= masks[tap-1]
		}
		copy(masks[1:], masks[:crypto1.StateBits-1])
		masks[0] = fb
	}

	b.rel.NumClauses = len(b.rel.Known) + len(b.rel.XorClauses) + len(b.rel.Clauses)
	return b.rel, nil
}

// Write builds the relation and writes it to w.
func Write(w io.Writer, outputs int) error {
	rel, err := Build(outputs)
	if err != nil {
		return err
	}
	if _, err := rel.WriteTo(w); err != nil {
		return err
	}
	return nil
}

func (b *builder) newVar() int {
	b.rel.NumVars++
	return b.rel.NumVars
}

// varFor returns the variable holding the XOR of the time-0 positions in mask.
func (b *builder) varFor(mask uint64) int {
	if bits.OnesCount64(mask) == 1 {
		return crypto1.StateBits - bits.TrailingZeros64(mask)
	}
	if v, ok := b.cache[mask]; ok {
		return v
	}
	v := b.newVar()
	b.cache[mask] = v

	vars := []int{v}
	for p := 0; p < crypto1.StateBits; p++ {
		if mask>>uint(p)&1 == 1 {
			vars = append(vars, crypto1.StateBits-p)
		}
	}
	b.rel.XorClauses = append(b.rel.XorClauses, cnf.XorClause{Vars: vars, RHS: false})
	return v
}

// table adds y = fn(in), in[0] being the most significant index bit. Each
// clause rules out one input assignment paired with the wrong output.
func (b *builder) table(fn func(uint) uint8, in []int, y int) {
	n := len(in)
	for idx := uint(0); idx < 1<<uint(n); idx++ {
		clause := make([]int, 0, n+1)
		for i, x := range in {
			if idx>>uint(n-1-i)&1 == 1 {
				clause = append(clause, -x)
			} else {
				clause = append(clause, x)
			}
		}
		if fn(idx) == 1 {
			clause = append(clause, y)
		} else {
			clause = append(clause, -y)
		}
		b.rel.Clauses = append(b.rel.Clauses, clause)
	}
}
