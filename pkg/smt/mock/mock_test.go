package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/term"
)

func TestScriptedSequenceReplaysInOrder(t *testing.T) {
	store := term.NewStore()
	x0 := term.VarKey{Base: "x", Time: 0}

	itp := store.Eq(store.Var(x0, term.Int), store.IntLit(0))

	s := New("base", []Result{
		{Status: smt.Sat, Model: map[term.VarKey]int64{x0: 3}},
		{Status: smt.Unsat, Interpolant: itp},
	})

	assert.Equal(t, "base", s.Name())

	st, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, smt.Sat, st)

	v, ok := s.Model().Eval(x0)
	require.True(t, ok)
	assert.Equal(t, int64(3), v)

	st, err = s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, smt.Unsat, st)

	got, err := s.Interpolant()
	require.NoError(t, err)
	assert.Equal(t, itp, got)
}

func TestCheckPastScriptEndReturnsUnknown(t *testing.T) {
	s := New("empty", nil)

	st, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, smt.Unknown, st)
}

func TestPushPopTracksAssertedFormulas(t *testing.T) {
	store := term.NewStore()
	s := New("stack", []Result{{Status: smt.Sat}})

	a := store.True()
	b := store.False()

	s.Assert(a)
	s.Push()
	s.Assert(b)
	assert.ElementsMatch(t, []term.Term{a, b}, s.Asserted())

	s.Pop()
	assert.Equal(t, []term.Term{a}, s.Asserted())
}

func TestInterpolantErrorsWithoutScriptedValue(t *testing.T) {
	s := New("noitp", []Result{{Status: smt.Unsat}})

	_, err := s.Check(context.Background())
	require.NoError(t, err)

	_, err = s.Interpolant()
	assert.Error(t, err)
}

func TestCheckHonoursCancelledContext(t *testing.T) {
	s := New("cancelled", []Result{{Status: smt.Sat}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := s.Check(ctx)
	assert.Error(t, err)
	assert.Equal(t, smt.Unknown, st)
}
