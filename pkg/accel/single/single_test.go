package single

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hornverify/hornverify/pkg/config"
	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/smt/mock"
	"github.com/hornverify/hornverify/pkg/term"
	"github.com/hornverify/hornverify/pkg/tsextract"
)

func counterTS(store *term.Store) tsextract.TS {
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

func scriptedFactory(scripts map[string][]mock.Result) smt.Factory {
	return func(name string) smt.Solver {
		return mock.New(name, scripts[name])
	}
}

func TestSolveFindsCounterexampleWithinFirstLevel(t *testing.T) {
	store := term.NewStore()
	ts := counterTS(store)

	factory := scriptedFactory(map[string][]mock.Result{
		"Reach":  {{Status: smt.Sat}},
		"Replay": {{Status: smt.Sat, Model: map[term.VarKey]int64{{Base: "x", Time: 0}: 0}}},
	})

	result, err := New(store).Solve(context.Background(), ts, factory, config.Default())
	require.NoError(t, err)
	require.NotNil(t, result.Invalid)
	assert.Equal(t, 0, result.Invalid.Length)
}

func TestSolveReportsSafeWhenHierarchyReachesFixedPoint(t *testing.T) {
	store := term.NewStore()
	ts := counterTS(store)

	factory := scriptedFactory(map[string][]mock.Result{
		"Reach":              {{Status: smt.Unsat}},
		"LessThanFixedPoint": {{Status: smt.Unsat}},
	})

	result, err := New(store).Solve(context.Background(), ts, factory, config.Default())
	require.NoError(t, err)
	require.NotNil(t, result.Valid)
	assert.Nil(t, result.Invalid)

	inv, ok := result.Valid.Invariant["counter"]
	require.True(t, ok)
	assert.NotZero(t, inv)
}

func TestSolveDoublesUntilBoundExhausted(t *testing.T) {
	store := term.NewStore()
	ts := counterTS(store)

	cfg := config.Default()
	cfg.MaxK = 2

	factory := scriptedFactory(map[string][]mock.Result{
		"Reach": {{Status: smt.Unsat}, {Status: smt.Unsat}, {Status: smt.Unsat}},
	})

	result, err := New(store).Solve(context.Background(), ts, factory, cfg)
	require.NoError(t, err)
	assert.Nil(t, result.Invalid)
	assert.Nil(t, result.Valid)
}
