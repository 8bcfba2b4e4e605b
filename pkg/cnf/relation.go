package cnf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrMalformedRelation is matched by every error Parse and ParseFile
	// return, including a file that cannot be read.
	ErrMalformedRelation = errors.New("malformed relation file")

	// ErrUnknownVariable is returned for a literal outside 1..NumVars.
	ErrUnknownVariable = errors.New("unknown variable")
)

// ParseError locates a problem in a relation file.
type ParseError struct {
	Line int    // 1-based line number, 0 when the problem is the file as a whole
	Msg  string // What was wrong
	Err  error  // Optional underlying error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "relation parse error"
	}
	msg := e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Line == 0 {
		return fmt.Sprintf("relation: %s", msg)
	}
	return fmt.Sprintf("relation line %d: %s", e.Line, msg)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports ErrMalformedRelation as matching.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedRelation
}

// XorClause constrains the XOR of its variables to RHS.
type XorClause struct {
	Vars []int // Positive variable numbers
	RHS  bool
}

// Relation is a parsed relation file: the fixed constraints between the
// register variables 1..48 and a run of keystream variables starting at
// KnownOffset.
type Relation struct {
	NumVars    int
	NumClauses int // As declared by the header
	Clauses    [][]int
	XorClauses []XorClause
	// Known holds the unit clauses. They mark the keystream variables and are
	// not constraints: the observed keystream is supplied per solve instead.
	Known       []int
	KnownOffset int
	// Names maps variables to the labels of "c var N name" comments.
	Names map[int]string
}

// ParseFile parses the relation file at path.
func ParseFile(path string) (*Relation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Msg: "open file", Err: err}
	}
	defer f.Close()

	rel, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rel, nil
}

// Parse reads a relation in extended DIMACS form. The header is
// "p cnf <vars> <clauses>"; lines starting with c are comments; lines
// starting with x are XOR clauses; every clause ends with 0. A clause of a
// single literal is recorded in Known, and the first one fixes KnownOffset.
func Parse(r io.Reader) (*Relation, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	rel := &Relation{Names: map[int]string{}}
	lineNo := 0
	header := false

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if !header {
			if line[0] == 'c' {
				continue
			}
			if err := rel.parseHeader(line); err != nil {
				return nil, &ParseError{Line: lineNo, Msg: err.Error()}
			}
			header = true
			continue
		}

		switch line[0] {
		case 'c':
			rel.parseComment(line)
			continue
		case 'p':
			return nil, &ParseError{Line: lineNo, Msg: "duplicate header"}
		}

		xor := line[0] == 'x'
		if xor {
			line = line[1:]
		}
		lits, err := rel.parseLiterals(line)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Msg: "invalid clause", Err: err}
		}

		switch {
		case len(lits) == 1:
			rel.Known = append(rel.Known, lits[0])
		case xor:
			rel.XorClauses = append(rel.XorClauses, NewXorClause(lits))
		default:
			rel.Clauses = append(rel.Clauses, lits)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Line: lineNo + 1, Msg: "read relation", Err: err}
	}

	if !header {
		return nil, &ParseError{Msg: "missing header"}
	}
	if len(rel.Known) == 0 {
		return nil, &ParseError{Msg: "no unit clause marks the keystream variables"}
	}
	rel.KnownOffset = abs(rel.Known[0])
	return rel, nil
}

// NewXorClause folds literal signs into the right-hand side: the literals
// XOR to true, and each negated literal flips that.
func NewXorClause(lits []int) XorClause {
	xc := XorClause{Vars: make([]int, len(lits)), RHS: true}
	for i, l := range lits {
		if l < 0 {
			xc.RHS = !xc.RHS
		}
		xc.Vars[i] = abs(l)
	}
	return xc
}

func (rel *Relation) parseHeader(line string) error {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != "p" || fields[1] != "cnf" {
		return fmt.Errorf("invalid header %q", line)
	}
	vars, err := strconv.Atoi(fields[2])
	if err != nil || vars < 1 {
		return fmt.Errorf("invalid variable count %q", fields[2])
	}
	clauses, err := strconv.Atoi(fields[3])
	if err != nil || clauses < 0 {
		return fmt.Errorf("invalid clause count %q", fields[3])
	}
	rel.NumVars = vars
	rel.NumClauses = clauses
	return nil
}

// parseComment picks up "c var <n> <name>" labels and ignores the rest.
func (rel *Relation) parseComment(line string) {
	fields := strings.Fields(line)
	if len(fields) < 4 || fields[0] != "c" || fields[1] != "var" {
		return
	}
	v, err := strconv.Atoi(fields[2])
	if err != nil || v < 1 || v > rel.NumVars {
		return
	}
	rel.Names[v] = fields[3]
}

func (rel *Relation) parseLiterals(line string) ([]int, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[len(fields)-1] != "0" {
		return nil, fmt.Errorf("clause is not terminated by 0")
	}
	fields = fields[:len(fields)-1]
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty clause")
	}

	lits := make([]int, len(fields))
	for i, f := range fields {
		l, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid literal %q", f)
		}
		if l == 0 || abs(l) > rel.NumVars {
			return nil, fmt.Errorf("literal %d: %w", l, ErrUnknownVariable)
		}
		lits[i] = l
	}
	return lits, nil
}

// WriteTo writes the relation in the format Parse reads. XOR clauses are
// written with their first literal negated when RHS is false.
func (rel *Relation) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	printf := func(format string, args ...any) {
		c, _ := fmt.Fprintf(bw, format, args...)
		n += int64(c)
	}

	total := len(rel.Known) + len(rel.XorClauses) + len(rel.Clauses)
	printf("p cnf %d %d\n", rel.NumVars, total)

	vars := make([]int, 0, len(rel.Names))
	for v := range rel.Names {
		vars = append(vars, v)
	}
	sort.Ints(vars)
	for _, v := range vars {
		printf("c var %d %s\n", v, rel.Names[v])
	}

	for _, l := range rel.Known {
		printf("%d 0\n", l)
	}
	for _, xc := range rel.XorClauses {
		printf("x%s 0\n", joinLiterals(xc.Literals()))
	}
	for _, c := range rel.Clauses {
		printf("%s 0\n", joinLiterals(c))
	}

	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("write relation: %w", err)
	}
	return n, nil
}

// Literals returns the clause as signed literals, the first one negated when
// RHS is false.
func (xc XorClause) Literals() []int {
	lits := append([]int(nil), xc.Vars...)
	if !xc.RHS && len(lits) > 0 {
		lits[0] = -lits[0]
	}
	return lits
}

func joinLiterals(lits []int) string {
	parts := make([]string, len(lits))
	for i, l := range lits {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, " ")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
