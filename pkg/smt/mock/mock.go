// Package mock provides the scripted solver called for by spec.md §9
// DESIGN NOTES ("provide a mock that replays scripted (SAT|UNSAT,
// model?, interpolant?) sequences for unit tests"). It implements
// pkg/smt.Solver without ever touching a real SMT backend, so engine
// tests can pin exact push/pop/check sequences.
package mock

import (
	"context"
	"fmt"

	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/term"
)

// Result is one scripted outcome for a single Check call.
type Result struct {
	Status      smt.Status
	Model       map[term.VarKey]int64
	Interpolant term.Term
}

// Solver is a pkg/smt.Solver backed by a fixed script of results,
// consumed in order as Check is called. Calling Check more times than
// the script provides returns smt.Unknown.
type Solver struct {
	name   string
	script []Result
	calls  int

	scopes [][]term.Term

	lastModel       map[term.VarKey]int64
	lastInterpolant term.Term
	lastHadItp      bool
}

// New creates a scripted solver tagged name, replaying script in
// order.
func New(name string, script []Result) *Solver {
	return &Solver{name: name, script: script, scopes: [][]term.Term{nil}}
}

// Name implements smt.Solver.
func (s *Solver) Name() string { return s.name }

// Push implements smt.Solver.
func (s *Solver) Push() { s.scopes = append(s.scopes, nil) }

// Pop implements smt.Solver.
func (s *Solver) Pop() {
	if len(s.scopes) > 1 {
		s.scopes = s.scopes[:len(s.scopes)-1]
	}
}

// Assert implements smt.Solver.
func (s *Solver) Assert(fla term.Term) {
	top := len(s.scopes) - 1
	s.scopes[top] = append(s.scopes[top], fla)
}

// Asserted returns every formula currently in scope, oldest scope
// first — useful for assertions in tests about what an engine sent.
func (s *Solver) Asserted() []term.Term {
	var out []term.Term
	for _, scope := range s.scopes {
		out = append(out, scope...)
	}

	return out
}

// Check implements smt.Solver by consuming the next scripted result.
func (s *Solver) Check(ctx context.Context) (smt.Status, error) {
	if err := ctx.Err(); err != nil {
		return smt.Unknown, err
	}

	if s.calls >= len(s.script) {
		return smt.Unknown, nil
	}

	r := s.script[s.calls]
	s.calls++

	s.lastModel = r.Model
	s.lastInterpolant = r.Interpolant
	s.lastHadItp = r.Interpolant.IsValid()

	return r.Status, nil
}

// Model implements smt.Solver.
func (s *Solver) Model() smt.Model { return mapModel(s.lastModel) }

// Interpolant implements smt.Solver.
func (s *Solver) Interpolant() (term.Term, error) {
	if !s.lastHadItp {
		return term.Invalid, fmt.Errorf("mock: no interpolant scripted for the last check")
	}

	return s.lastInterpolant, nil
}

type mapModel map[term.VarKey]int64

func (m mapModel) Eval(v term.VarKey) (int64, bool) {
	val, ok := m[v]
	return val, ok
}
