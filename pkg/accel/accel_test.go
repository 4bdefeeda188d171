package accel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hornverify/hornverify/pkg/config"
	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/smt/mock"
	"github.com/hornverify/hornverify/pkg/term"
)

func scriptedFactory(t *testing.T, scripts map[string][]mock.Result) smt.Factory {
	t.Helper()

	return func(name string) smt.Solver {
		return mock.New(name, scripts[name])
	}
}

func TestSolveReportsImmediateCounterexample(t *testing.T) {
	store := term.NewStore()
	ts := counterTS(store)

	factory := scriptedFactory(t, map[string][]mock.Result{
		"Reach":  {{Status: smt.Sat}},
		"Replay": {{Status: smt.Sat, Model: map[term.VarKey]int64{{Base: "x", Time: 0}: 0}}},
	})

	result, err := New(store).Solve(context.Background(), ts, factory, config.Default())
	require.NoError(t, err)
	require.NotNil(t, result.Invalid)
	assert.Equal(t, 0, result.Invalid.Length)
}

func TestSolveReportsCounterexampleAfterDoubling(t *testing.T) {
	store := term.NewStore()
	ts := counterTS(store)

	factory := scriptedFactory(t, map[string][]mock.Result{
		"Reach": {{Status: smt.Unsat}, {Status: smt.Unsat}, {Status: smt.Sat}},
		"Replay": {
			{Status: smt.Unsat},
			{Status: smt.Unsat},
			{Status: smt.Sat, Model: map[term.VarKey]int64{{Base: "x", Time: 2}: -1}},
		},
	})

	result, err := New(store).Solve(context.Background(), ts, factory, config.Default())
	require.NoError(t, err)
	require.NotNil(t, result.Invalid)
	assert.Equal(t, 2, result.Invalid.Length)
}

func TestSolveReportsSafeWhenLessThanReachesFixedPoint(t *testing.T) {
	store := term.NewStore()
	ts := counterTS(store)

	factory := scriptedFactory(t, map[string][]mock.Result{
		"Reach":              {{Status: smt.Unsat}, {Status: smt.Unsat}},
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

func TestSolveReturnsUnknownWhenBoundExhausted(t *testing.T) {
	store := term.NewStore()
	ts := counterTS(store)

	cfg := config.Default()
	cfg.MaxK = 1

	factory := scriptedFactory(t, map[string][]mock.Result{
		"Reach": {{Status: smt.Unsat}, {Status: smt.Unsat}, {Status: smt.Unsat}},
	})

	result, err := New(store).Solve(context.Background(), ts, factory, cfg)
	require.NoError(t, err)
	assert.Nil(t, result.Invalid)
	assert.Nil(t, result.Valid)
}
