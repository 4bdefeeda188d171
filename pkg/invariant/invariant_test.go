package invariant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/smt/mock"
	"github.com/hornverify/hornverify/pkg/term"
	"github.com/hornverify/hornverify/pkg/tsextract"
)

func counterSystem(store *term.Store) tsextract.TS {
	x0 := term.VarKey{Base: "x", Time: 0}
	x1 := term.VarKey{Base: "x", Time: 1}

	return tsextract.TS{
		X:     []term.VarKey{x0},
		Xp:    []term.VarKey{x1},
		Sorts: []term.Sort{term.Int},
		A:     "counter",
		Init:  store.Eq(store.Var(x0, term.Int), store.IntLit(0)),
		Tr:    store.Eq(store.Var(x1, term.Int), store.Add(store.Var(x0, term.Int), store.IntLit(1))),
		Bad:   store.Lt(store.Var(x0, term.Int), store.IntLit(0)),
	}
}

func TestKinductiveToInductiveIsIdentityAtKOne(t *testing.T) {
	store := term.NewStore()
	ts := counterSystem(store)

	kInv := store.Le(store.IntLit(0), store.Var(ts.X[0], term.Int))

	got, err := KinductiveToInductive(store, ts, kInv, 1)
	require.NoError(t, err)
	assert.Equal(t, kInv, got)
}

func TestKinductiveToInductiveChainsAuxiliaryStates(t *testing.T) {
	store := term.NewStore()
	ts := counterSystem(store)

	kInv := store.Le(store.IntLit(0), store.Var(ts.X[0], term.Int))

	got, err := KinductiveToInductive(store, ts, kInv, 3)
	require.NoError(t, err)

	var sawAux1, sawAux2 bool

	for _, fv := range store.FreeVars(got) {
		switch fv.Base {
		case "x!kind1":
			sawAux1 = true
			assert.True(t, fv.Unversioned())
		case "x!kind2":
			sawAux2 = true
			assert.True(t, fv.Unversioned())
		}
	}

	assert.True(t, sawAux1, "expected an auxiliary variable for the first intermediate state")
	assert.True(t, sawAux2, "expected an auxiliary variable for the second intermediate state")

	// The original state variable x (time 0) must still be free in the result.
	assert.Contains(t, store.FreeVars(got), ts.X[0])
}

func TestKinductiveToInductiveRejectsNonPositiveK(t *testing.T) {
	store := term.NewStore()
	ts := counterSystem(store)

	_, err := KinductiveToInductive(store, ts, store.True(), 0)
	assert.Error(t, err)
}

func TestVerifyKinductiveInvariantAcceptsGenuineInvariant(t *testing.T) {
	store := term.NewStore()
	ts := counterSystem(store)

	inv := store.Le(store.IntLit(0), store.Var(ts.X[0], term.Int))

	calls := 0
	factory := func(name string) smt.Solver {
		calls++
		// Base loop runs k=2 iterations, Step runs once: every check is UNSAT.
		return mock.New(name, []mock.Result{
			{Status: smt.Unsat}, {Status: smt.Unsat}, {Status: smt.Unsat},
		})
	}

	ok, err := VerifyKinductiveInvariant(context.Background(), store, ts, factory, inv, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, calls)
}

func TestVerifyKinductiveInvariantRejectsBaseCounterexample(t *testing.T) {
	store := term.NewStore()
	ts := counterSystem(store)

	inv := store.Le(store.IntLit(1), store.Var(ts.X[0], term.Int))

	factory := func(name string) smt.Solver {
		return mock.New(name, []mock.Result{{Status: smt.Sat}})
	}

	ok, err := VerifyKinductiveInvariant(context.Background(), store, ts, factory, inv, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyKinductiveInvariantRejectsNonPositiveK(t *testing.T) {
	store := term.NewStore()
	ts := counterSystem(store)

	_, err := VerifyKinductiveInvariant(context.Background(), store, ts, nil, store.True(), 0)
	assert.Error(t, err)
}
