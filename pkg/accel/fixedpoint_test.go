package accel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/smt/mock"
	"github.com/hornverify/hornverify/pkg/term"
)

func TestCheckLessThanFixedPointHoldsOnUnsat(t *testing.T) {
	store := term.NewStore()
	ts := counterTS(store)

	factory := scriptedFactory(t, map[string][]mock.Result{
		"LessThanFixedPoint": {{Status: smt.Unsat}},
	})

	rel := ReflexiveStep(store, ts)

	fixed, err := checkLessThanFixedPoint(context.Background(), store, ts, factory, rel, 0)
	require.NoError(t, err)
	assert.True(t, fixed)
}

func TestCheckLessThanFixedPointFailsOnSat(t *testing.T) {
	store := term.NewStore()
	ts := counterTS(store)

	factory := scriptedFactory(t, map[string][]mock.Result{
		"LessThanFixedPoint": {{Status: smt.Sat}},
	})

	rel := ReflexiveStep(store, ts)

	fixed, err := checkLessThanFixedPoint(context.Background(), store, ts, factory, rel, 0)
	require.NoError(t, err)
	assert.False(t, fixed)
}

func TestFixedPointInvariantIsOverStateVarsOnly(t *testing.T) {
	store := term.NewStore()
	ts := counterTS(store)

	rel := ReflexiveStep(store, ts)
	inv := fixedPointInvariant(store, ts, rel, 0)

	fv := store.FreeVars(inv)
	assert.True(t, hasVar(fv, ts.X[0]))
	assert.False(t, hasVar(fv, ts.Xp[0]))
}

func TestTryFixedPointReturnsSafeResultKeyedByVertexName(t *testing.T) {
	store := term.NewStore()
	ts := counterTS(store)

	factory := scriptedFactory(t, map[string][]mock.Result{
		"LessThanFixedPoint": {{Status: smt.Unsat}},
	})

	rel := ReflexiveStep(store, ts)

	result, ok, err := TryFixedPoint(context.Background(), store, ts, factory, rel, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, result.Valid)
	assert.Contains(t, result.Valid.Invariant, "counter")
}

func TestTryFixedPointReportsNotOkWhenUnfixed(t *testing.T) {
	store := term.NewStore()
	ts := counterTS(store)

	factory := scriptedFactory(t, map[string][]mock.Result{
		"LessThanFixedPoint": {{Status: smt.Sat}},
	})

	rel := ReflexiveStep(store, ts)

	result, ok, err := TryFixedPoint(context.Background(), store, ts, factory, rel, 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, result)
}
