// Package invariant strengthens the k-inductive invariant the
// k-induction engine finds into a 1-inductive one, and can re-verify
// that strengthening by direct SMT queries. Grounded on spec.md §4.7
// and the kinductiveToInductive/verifyKinductiveInvariant declarations
// in original_source/src/engine/AcceleratedBmc.h; the pack does not
// retrieve AcceleratedBmc.cc, so the construction below follows the
// textbook k-induction strengthening (existentially closing the
// intermediate states of a length-k chain) rather than a line-for-line
// port.
package invariant

import (
	"context"
	"fmt"

	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/term"
	"github.com/hornverify/hornverify/pkg/tsextract"
)

// KinductiveToInductive rewrites kInv, a formula over ts.X known to be
// k-inductive for ts, into an equivalent-on-reachable-states formula
// that is 1-inductive: INV(X) = kInv(X) ∧ ∃Y1..Y_{k-1} such that
// Y0=X, Tr(Y_{i-1},Y_i) and kInv(Y_i) hold for every i. The existential
// variables are represented as fresh unversioned auxiliaries rather
// than eliminated, since this module only performs trivial
// (equality-solving) quantifier elimination (spec.md §1 Non-goals);
// every consumer of the returned term must treat those auxiliaries as
// implicitly existentially bound.
func KinductiveToInductive(store *term.Store, ts tsextract.TS, kInv term.Term, k int) (term.Term, error) {
	if k <= 0 {
		return term.Term{}, fmt.Errorf("invariant: k must be positive, got %d", k)
	}

	if len(ts.X) != len(ts.Sorts) {
		return term.Term{}, fmt.Errorf("invariant: transition system X and Sorts length mismatch")
	}

	conjuncts := []term.Term{kInv}
	prev := ts.X

	for i := 1; i < k; i++ {
		next := auxStateVector(ts.X, i)

		trStep := store.Substitute(ts.Tr, chainSubst(store, ts.X, prev, ts.Xp, next, ts.Sorts))
		invStep := store.Substitute(kInv, varSubst(store, ts.X, next, ts.Sorts))

		conjuncts = append(conjuncts, trStep, invStep)
		prev = next
	}

	return store.And(conjuncts...), nil
}

// auxStateVector builds the i-th intermediate state vector of a
// strengthening chain: one fresh, unversioned auxiliary variable per
// component of x, named so repeated calls for distinct i never
// collide with each other or with a real program variable.
func auxStateVector(x []term.VarKey, i int) []term.VarKey {
	out := make([]term.VarKey, len(x))

	for j, v := range x {
		out[j] = term.GetUnversioned(term.VarKey{Base: fmt.Sprintf("%s!kind%d", v.Base, i)})
	}

	return out
}

// varSubst maps each key in from to a Var term over the corresponding
// key in to, at the matching sort.
func varSubst(store *term.Store, from, to []term.VarKey, sorts []term.Sort) map[term.VarKey]term.Term {
	subst := make(map[term.VarKey]term.Term, len(from))

	for i := range from {
		subst[from[i]] = store.Var(to[i], sorts[i])
	}

	return subst
}

// chainSubst combines two varSubst mappings, one for the current-state
// half of a transition-relation formula and one for its next-state
// half.
func chainSubst(store *term.Store, x, xTo, xp, xpTo []term.VarKey, sorts []term.Sort) map[term.VarKey]term.Term {
	subst := varSubst(store, x, xTo, sorts)
	for k, v := range varSubst(store, xp, xpTo, sorts) {
		subst[k] = v
	}

	return subst
}

// VerifyKinductiveInvariant re-checks, via factory-produced solver
// contexts, that inv is k-inductive for ts: every state reachable
// within the first k steps of Init satisfies inv (the base case), and
// a chain of k inv-respecting transitions cannot reach a state
// violating inv (the step case). It exists to let callers (and tests)
// cross-check an invariant handed back by the k-induction engine
// independently of the bookkeeping that produced it.
func VerifyKinductiveInvariant(ctx context.Context, store *term.Store, ts tsextract.TS, factory smt.Factory, inv term.Term, k int) (bool, error) {
	if k <= 0 {
		return false, fmt.Errorf("invariant: k must be positive, got %d", k)
	}

	tm := term.NewTimeMachine(store)

	base := factory("VerifyBase")
	base.Assert(ts.Init)

	for i := 0; i < k; i++ {
		base.Push()
		base.Assert(tm.SendThroughTime(store.Not(inv), i))

		status, err := base.Check(ctx)
		if err != nil {
			return false, err
		}

		if status == smt.Sat {
			return false, nil
		}

		base.Pop()
		base.Assert(tm.SendThroughTime(ts.Tr, i))
	}

	step := factory("VerifyStep")

	for i := 0; i < k; i++ {
		step.Assert(tm.SendThroughTime(inv, i))
		step.Assert(tm.SendThroughTime(ts.Tr, i))
	}

	step.Assert(tm.SendThroughTime(store.Not(inv), k))

	status, err := step.Check(ctx)
	if err != nil {
		return false, err
	}

	return status == smt.Unsat, nil
}
