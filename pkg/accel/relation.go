package accel

import (
	"fmt"

	"github.com/hornverify/hornverify/pkg/term"
	"github.com/hornverify/hornverify/pkg/tsextract"
)

// ReflexiveStep returns the relation "stay put, or take exactly one Tr
// step": Or(identity(X,Xp), Tr). Every doubling hierarchy in this
// package starts from a reflexive relation so that composing it with
// itself accumulates reachable lengths (0, 1, 2, ...) rather than
// jumping straight to powers of two, matching
// AcceleratedBmcSingle::transitionHierarchy's level 0 and
// AcceleratedBmc::LessThanPower(0).
func ReflexiveStep(store *term.Store, ts tsextract.TS) term.Term {
	return store.Or(identityRelation(store, ts), ts.Tr)
}

func identityRelation(store *term.Store, ts tsextract.TS) term.Term {
	eqs := make([]term.Term, len(ts.X))

	for i := range ts.X {
		eqs[i] = store.Eq(store.Var(ts.Xp[i], ts.Sorts[i]), store.Var(ts.X[i], ts.Sorts[i]))
	}

	return store.And(eqs...)
}

// VarSubst builds the substitution mapping each key in from to a Var
// term over the corresponding key in to, at the matching sort.
func VarSubst(store *term.Store, from, to []term.VarKey, sorts []term.Sort) map[term.VarKey]term.Term {
	subst := make(map[term.VarKey]term.Term, len(from))

	for i := range from {
		subst[from[i]] = store.Var(to[i], sorts[i])
	}

	return subst
}

// freeAuxVars returns the free variables of rel that are neither state
// nor next-state variables of ts: the implicitly existential midpoint
// variables a previous Compose call introduced.
func freeAuxVars(store *term.Store, ts tsextract.TS, rel term.Term) []term.VarKey {
	skip := make(map[term.VarKey]bool, len(ts.X)+len(ts.Xp))
	for _, v := range ts.X {
		skip[v] = true
	}

	for _, v := range ts.Xp {
		skip[v] = true
	}

	var aux []term.VarKey

	for _, fv := range store.FreeVars(rel) {
		if !skip[fv] {
			aux = append(aux, fv)
		}
	}

	return aux
}

// sortsOf recovers the sort of every variable in vars by walking rel
// once. Every aux variable Compose ever introduces was built at a
// known sort, but by the time it needs renaming the call site no
// longer carries that correspondence, so reading it back off an actual
// occurrence in rel is the simplest correct option.
func sortsOf(store *term.Store, rel term.Term, vars []term.VarKey) []term.Sort {
	want := make(map[term.VarKey]int, len(vars))
	for i, v := range vars {
		want[v] = i
	}

	out := make([]term.Sort, len(vars))

	var walk func(term.Term)

	walk = func(t term.Term) {
		if v, ok := store.IsVar(t); ok {
			if i, needed := want[v]; needed {
				out[i] = store.Sort(t)
			}

			return
		}

		if _, args, ok := store.IsApp(t); ok {
			for _, a := range args {
				walk(a)
			}
		}
	}

	walk(rel)

	return out
}

// renameAux returns rel with every one of its free aux vars (per
// freeAuxVars) renamed by appending tag to its base name, keeping it
// unversioned. Compose calls this once per operand so that two uses of
// the same cached relation never alias each other's existentials.
func renameAux(store *term.Store, ts tsextract.TS, rel term.Term, tag string) term.Term {
	aux := freeAuxVars(store, ts, rel)
	if len(aux) == 0 {
		return rel
	}

	sorts := sortsOf(store, rel, aux)
	subst := make(map[term.VarKey]term.Term, len(aux))

	for i, v := range aux {
		subst[v] = store.Var(term.GetUnversioned(term.VarKey{Base: v.Base + tag}), sorts[i])
	}

	return store.Substitute(rel, subst)
}

// Compose builds the relation "reach via rel1, then via rel2",
// introducing a fresh midpoint state vector tagged by level so
// distinct doubling rounds never share midpoint names, and renaming
// away whatever auxiliary variables rel1/rel2 already carry so that
// composing a cached relation with itself doesn't alias one
// occurrence's leftover existentials with the other's. Grounded on
// AcceleratedBmc.h's doubling of exactPowers/lessThanPowers and
// AcceleratedBmcSingle.h's transitionHierarchy, generalised into one
// shared primitive both variants call.
func Compose(store *term.Store, ts tsextract.TS, rel1, rel2 term.Term, level int) term.Term {
	left := renameAux(store, ts, rel1, fmt.Sprintf("!acc%dL", level))
	right := renameAux(store, ts, rel2, fmt.Sprintf("!acc%dR", level))

	mid := make([]term.VarKey, len(ts.X))
	for i, x := range ts.X {
		mid[i] = term.GetUnversioned(term.VarKey{Base: fmt.Sprintf("%s!mid%d", x.Base, level)})
	}

	leftAtMid := store.Substitute(left, VarSubst(store, ts.Xp, mid, ts.Sorts))
	rightAtMid := store.Substitute(right, VarSubst(store, ts.X, mid, ts.Sorts))

	return store.And(leftAtMid, rightAtMid)
}
