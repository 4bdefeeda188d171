package term

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// True returns the boolean constant true.
func (s *Store) True() Term {
	return s.intern(node{kind: kindTrue, sort: Bool}, "T")
}

// False returns the boolean constant false.
func (s *Store) False() Term {
	return s.intern(node{kind: kindFalse, sort: Bool}, "F")
}

// IntLit returns an integer literal.
func (s *Store) IntLit(v int64) Term {
	key := fmt.Sprintf("c:%d", v)
	return s.intern(node{kind: kindIntConst, sort: Int, c: v}, key)
}

// Var returns the (interned) occurrence of the variable identified by
// key at the given sort. Two calls with the same key and sort always
// return the same Term.
func (s *Store) Var(key VarKey, sort Sort) Term {
	k := fmt.Sprintf("v:%s:%d", key.String(), sort)
	return s.intern(node{kind: kindVar, sort: sort, v: key}, k)
}

// AuxVar returns the unversioned (auxiliary) variable of the given
// name and sort; like Var, repeated calls with the same name and sort
// return the same Term.
func (s *Store) AuxVar(name string, sort Sort) Term {
	return s.Var(VarKey{Base: name, Time: -1}, sort)
}

func (s *Store) app(op Op, sort Sort, args ...Term) Term {
	ids := make([]ID, len(args))
	parts := make([]string, len(args))

	for i, a := range args {
		ids[i] = a.id
		parts[i] = strconv.Itoa(int(a.id))
	}

	key := fmt.Sprintf("a:%d:%s", op, strings.Join(parts, ","))

	return s.intern(node{kind: kindApp, sort: sort, op: op, args: ids}, key)
}

// And returns the conjunction of the given terms, flattening nested
// conjunctions and dropping redundant `true` operands. An empty
// argument list returns `true`.
func (s *Store) And(ts ...Term) Term {
	return s.flattenAssoc(OpAnd, s.True(), s.False(), ts)
}

// Or returns the disjunction of the given terms, flattening nested
// disjunctions and dropping redundant `false` operands. An empty
// argument list returns `false`.
func (s *Store) Or(ts ...Term) Term {
	return s.flattenAssoc(OpOr, s.False(), s.True(), ts)
}

// flattenAssoc builds an n-ary And/Or node, flattening nested
// applications of the same operator and applying the two trivial
// identities (absorbing element short-circuits, identity element is
// dropped).
func (s *Store) flattenAssoc(op Op, identity, absorbing Term, ts []Term) Term {
	var flat []Term

	var walk func(Term)

	walk = func(t Term) {
		if t.id == absorbing.id {
			flat = []Term{absorbing}
			return
		}

		if t.id == identity.id {
			return
		}

		if o, args, ok := s.IsApp(t); ok && o == op {
			for _, a := range args {
				walk(a)
			}

			return
		}

		flat = append(flat, t)
	}

	for _, t := range ts {
		walk(t)

		if len(flat) == 1 && flat[0].id == absorbing.id {
			return absorbing
		}
	}

	flat = dedupTerms(flat)

	switch len(flat) {
	case 0:
		return identity
	case 1:
		return flat[0]
	default:
		return s.app(op, Bool, flat...)
	}
}

func dedupTerms(ts []Term) []Term {
	seen := make(map[ID]bool, len(ts))
	out := ts[:0]

	for _, t := range ts {
		if !seen[t.id] {
			seen[t.id] = true
			out = append(out, t)
		}
	}

	return out
}

// Not returns the negation of t, eliminating double negation and
// negated constants.
func (s *Store) Not(t Term) Term {
	if s.IsTrue(t) {
		return s.False()
	}

	if s.IsFalse(t) {
		return s.True()
	}

	if op, args, ok := s.IsApp(t); ok && op == OpNot {
		return args[0]
	}

	return s.app(OpNot, Bool, t)
}

// Eq returns the equality of two terms of matching sort.
func (s *Store) Eq(a, b Term) Term {
	if a.id == b.id {
		return s.True()
	}

	if a.id > b.id {
		a, b = b, a
	}

	return s.app(OpEq, Bool, a, b)
}

// Lt returns a < b.
func (s *Store) Lt(a, b Term) Term { return s.app(OpLt, Bool, a, b) }

// Le returns a <= b.
func (s *Store) Le(a, b Term) Term { return s.app(OpLe, Bool, a, b) }

// Gt returns a > b.
func (s *Store) Gt(a, b Term) Term { return s.Lt(b, a) }

// Ge returns a >= b.
func (s *Store) Ge(a, b Term) Term { return s.Le(b, a) }

// Add returns the sum of the given arithmetic terms.
func (s *Store) Add(ts ...Term) Term {
	sortArgs := ts
	if len(sortArgs) == 0 {
		return s.IntLit(0)
	}

	return s.app(OpAdd, s.Sort(ts[0]), ts...)
}

// Sub returns a - b.
func (s *Store) Sub(a, b Term) Term { return s.app(OpSub, s.Sort(a), a, b) }

// Neg returns -a.
func (s *Store) Neg(a Term) Term { return s.app(OpNeg, s.Sort(a), a) }

// Mul returns the product of a constant factor c and a term a.
func (s *Store) Mul(c int64, a Term) Term {
	return s.app(OpMul, s.Sort(a), s.IntLit(c), a)
}

// String renders a term as an s-expression, for diagnostics.
func (s *Store) String(t Term) string {
	switch {
	case s.IsTrue(t):
		return "true"
	case s.IsFalse(t):
		return "false"
	}

	if v, ok := s.IsVar(t); ok {
		return v.String()
	}

	if c, ok := s.IntConst(t); ok {
		return strconv.FormatInt(c, 10)
	}

	op, args, _ := s.IsApp(t)
	parts := make([]string, len(args))

	for i, a := range args {
		parts[i] = s.String(a)
	}

	return fmt.Sprintf("(%s %s)", op, strings.Join(parts, " "))
}

// FreeVars returns the set of variable keys occurring in t, sorted for
// determinism.
func (s *Store) FreeVars(t Term) []VarKey {
	seen := make(map[VarKey]bool)
	s.collectFreeVars(t, seen)

	out := make([]VarKey, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Base != out[j].Base {
			return out[i].Base < out[j].Base
		}

		return out[i].Time < out[j].Time
	})

	return out
}

func (s *Store) collectFreeVars(t Term, seen map[VarKey]bool) {
	if v, ok := s.IsVar(t); ok {
		seen[v] = true
		return
	}

	if _, args, ok := s.IsApp(t); ok {
		for _, a := range args {
			s.collectFreeVars(a, seen)
		}
	}
}
