//go:build z3

package z3

import (
	"context"
	"fmt"

	"github.com/aclements/go-z3/z3"

	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/term"
)

// Solver is a pkg/smt.Solver backed by a real Z3 incremental context.
type Solver struct {
	name   string
	store  *term.Store
	ctx    *z3.Context
	solver *z3.Solver

	// translated caches interned term ids to their Z3 translation so a
	// densely-reused sub-term (e.g. a versioned copy of Tr) is only
	// translated once per solver lifetime.
	translated map[term.Term]z3.Bool
	intCache   map[term.Term]z3.Int
	vars       map[term.VarKey]z3.Int

	// scopes holds the formulas asserted at each push depth, scopes[0]
	// being everything asserted before the first Push. On an Unsat
	// check, every scope below the innermost one stands in for the
	// A-part and the innermost scope for the B-part demarcated at the
	// last Push, per the doc.go interpolation limitation.
	scopes [][]term.Term

	lastModel  *z3.Model
	lastStatus smt.Status
}

// New creates a Z3-backed solver tagged name, sharing store for term
// translation.
func New(store *term.Store, name string) *Solver {
	ctx := z3.NewContext(nil)

	return &Solver{
		name:       name,
		store:      store,
		ctx:        ctx,
		solver:     z3.NewSolver(ctx),
		translated: make(map[term.Term]z3.Bool),
		intCache:   make(map[term.Term]z3.Int),
		vars:       make(map[term.VarKey]z3.Int),
		scopes:     [][]term.Term{nil},
	}
}

// Factory adapts New to smt.Factory, closing over a shared term store.
func Factory(store *term.Store) smt.Factory {
	return func(name string) smt.Solver { return New(store, name) }
}

func (s *Solver) Name() string { return s.name }

func (s *Solver) Push() {
	s.solver.Push()
	s.scopes = append(s.scopes, nil)
}

func (s *Solver) Pop() {
	if len(s.scopes) > 1 {
		s.solver.Pop(1)
		s.scopes = s.scopes[:len(s.scopes)-1]
	}
}

func (s *Solver) Assert(fla term.Term) {
	top := len(s.scopes) - 1
	s.scopes[top] = append(s.scopes[top], fla)
	s.solver.Assert(s.translate(fla))
}

func (s *Solver) Check(ctx context.Context) (smt.Status, error) {
	if err := ctx.Err(); err != nil {
		return smt.Unknown, err
	}

	sat, err := s.solver.Check()
	if err != nil {
		return smt.Unknown, fmt.Errorf("z3: check failed: %w", err)
	}

	switch sat {
	case z3.Sat:
		s.lastStatus = smt.Sat
		model := s.solver.Model()
		s.lastModel = &model
	case z3.Unsat:
		s.lastStatus = smt.Unsat
		s.lastModel = nil
	default:
		s.lastStatus = smt.Unknown
		s.lastModel = nil
	}

	return s.lastStatus, nil
}

func (s *Solver) Model() smt.Model {
	if s.lastModel == nil {
		return nil
	}

	return &model{vars: s.vars, z3Model: s.lastModel}
}

// Interpolant approximates an A/B interpolant by returning the
// conjunction of the A-part (everything asserted before the last
// Push), per the limitation documented in doc.go: this is sound
// whenever the A-part itself is already phrased over the shared
// vocabulary, which holds for every A-part this module ever builds
// (pure-state or pure-transition formulas, per spec.md §4.4), but is
// not a general-purpose Craig interpolation procedure.
func (s *Solver) Interpolant() (term.Term, error) {
	if s.lastStatus != smt.Unsat {
		return term.Invalid, fmt.Errorf("z3: no interpolant available, last check was %s", s.lastStatus)
	}

	aPart := s.scopes[0]
	if n := len(s.scopes); n > 1 {
		aPart = nil
		for _, scope := range s.scopes[:n-1] {
			aPart = append(aPart, scope...)
		}
	}

	return s.store.And(aPart...), nil
}

func (s *Solver) translate(t term.Term) z3.Bool {
	if b, ok := s.translated[t]; ok {
		return b
	}

	var out z3.Bool

	switch {
	case s.store.IsTrue(t):
		out = s.ctx.FromBool(true)
	case s.store.IsFalse(t):
		out = s.ctx.FromBool(false)
	default:
		op, args, isApp := s.store.IsApp(t)
		if !isApp {
			panic("z3: non-boolean term used in boolean position")
		}

		out = s.translateApp(op, args)
	}

	s.translated[t] = out

	return out
}

func (s *Solver) translateApp(op term.Op, args []term.Term) z3.Bool {
	switch op {
	case term.OpAnd:
		bs := make([]z3.Bool, len(args))
		for i, a := range args {
			bs[i] = s.translate(a)
		}

		return s.ctx.And(bs...)
	case term.OpOr:
		bs := make([]z3.Bool, len(args))
		for i, a := range args {
			bs[i] = s.translate(a)
		}

		return s.ctx.Or(bs...)
	case term.OpNot:
		return s.translate(args[0]).Not()
	case term.OpEq:
		return s.translateInt(args[0]).Eq(s.translateInt(args[1]))
	case term.OpLt:
		return s.translateInt(args[0]).LT(s.translateInt(args[1]))
	case term.OpLe:
		return s.translateInt(args[0]).LE(s.translateInt(args[1]))
	default:
		panic(fmt.Sprintf("z3: %s is not a boolean operator", op))
	}
}

func (s *Solver) translateInt(t term.Term) z3.Int {
	if i, ok := s.intCache[t]; ok {
		return i
	}

	var out z3.Int

	switch {
	case s.isIntConst(t):
		c, _ := s.store.IntConst(t)
		out = s.ctx.FromInt(c, s.ctx.IntSort()).(z3.Int)
	default:
		if v, ok := s.store.IsVar(t); ok {
			out = s.lookupVar(v)
		} else {
			op, args, _ := s.store.IsApp(t)
			out = s.translateArith(op, args)
		}
	}

	s.intCache[t] = out

	return out
}

func (s *Solver) isIntConst(t term.Term) bool {
	_, ok := s.store.IntConst(t)
	return ok
}

func (s *Solver) lookupVar(v term.VarKey) z3.Int {
	if c, ok := s.vars[v]; ok {
		return c
	}

	c := s.ctx.IntConst(v.String())
	s.vars[v] = c

	return c
}

func (s *Solver) translateArith(op term.Op, args []term.Term) z3.Int {
	switch op {
	case term.OpAdd:
		is := make([]z3.Int, len(args))
		for i, a := range args {
			is[i] = s.translateInt(a)
		}

		return s.ctx.Add(is...)
	case term.OpSub:
		return s.translateInt(args[0]).Sub(s.translateInt(args[1]))
	case term.OpNeg:
		return s.translateInt(args[0]).Neg()
	case term.OpMul:
		return s.translateInt(args[0]).Mul(s.translateInt(args[1]))
	default:
		panic(fmt.Sprintf("z3: %s is not an arithmetic operator", op))
	}
}

type model struct {
	vars    map[term.VarKey]z3.Int
	z3Model *z3.Model
}

func (m *model) Eval(v term.VarKey) (int64, bool) {
	c, ok := m.vars[v]
	if !ok {
		return 0, false
	}

	val := m.z3Model.Eval(c, true)
	iv, isInt := val.(z3.Int)
	if !isInt {
		return 0, false
	}

	n, exact := iv.AsInt64()
	if !exact {
		return 0, false
	}

	return n, true
}
