package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hornverify/hornverify/pkg/chcparse"
	"github.com/hornverify/hornverify/pkg/config"
	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/smt/mock"
	"github.com/hornverify/hornverify/pkg/witness"
)

func scriptedFactory(scripts map[string][]mock.Result) smt.Factory {
	return func(name string) smt.Solver {
		return mock.New(name, scripts[name])
	}
}

// TestSolveScenarioA is spec.md §8 scenario A: a trivially SAFE
// counter, decided by the k-induction engine's forward induction check
// at k=0 without ever needing to unroll.
func TestSolveScenarioA(t *testing.T) {
	src := `
(declare-rel inv (Int))
(rule (=> (= x 0) (inv x)))
(rule (=> (and (inv x) (>= x 0) (= xp (+ x 1))) (inv xp)))
(query (and (inv x) (< x 0)))
`
	hg, err := chcparse.Parse(src)
	require.NoError(t, err)

	factory := scriptedFactory(map[string][]mock.Result{
		"Base":    {{Status: smt.Sat}, {Status: smt.Unsat}},
		"StepFwd": {{Status: smt.Unsat}},
	})

	res, err := Solve(context.Background(), hg, factory, config.Default())
	require.NoError(t, err)
	assert.Equal(t, witness.Safe, res.Answer)
	require.NotNil(t, res.Valid)
	assert.Contains(t, res.Valid.Invariant, "inv")
}

// TestSolveScenarioB is spec.md §8 scenario B: trivially UNSAFE at
// depth 3.
func TestSolveScenarioB(t *testing.T) {
	src := `
(declare-rel q (Int))
(rule (=> (= x 0) (q x)))
(rule (=> (and (q x) (= xp (+ x 1))) (q xp)))
(query (and (q x) (>= x 3)))
`
	hg, err := chcparse.Parse(src)
	require.NoError(t, err)

	factory := scriptedFactory(map[string][]mock.Result{
		"Base":    {{Status: smt.Sat}, {Status: smt.Unsat}, {Status: smt.Unsat}, {Status: smt.Unsat}, {Status: smt.Sat}},
		"StepFwd": {{Status: smt.Sat}, {Status: smt.Sat}, {Status: smt.Sat}},
		"StepBwd": {{Status: smt.Sat}, {Status: smt.Sat}, {Status: smt.Sat}},
	})

	res, err := Solve(context.Background(), hg, factory, config.Default())
	require.NoError(t, err)
	assert.Equal(t, witness.Unsafe, res.Answer)
	require.NotNil(t, res.Invalid)
	assert.Equal(t, 3, res.Invalid.Length)
}

// TestSolveScenarioC is spec.md §8 scenario C: a predicate (a) that
// only feeds the looping predicate (b) and carries no self-loop of its
// own, so the rewriter's contraction stage (pkg/rewrite) eliminates it
// entirely before transition-system extraction ever runs; the graph
// only becomes a single-loop transition system once contraction has
// happened.
func TestSolveScenarioC(t *testing.T) {
	src := `
(declare-rel a (Int))
(declare-rel b (Int))
(rule (a 0))
(rule (=> (a x) (b x)))
(rule (=> (and (b x) (< x 10) (= xp (+ x 1))) (b xp)))
(query (and (b x) (>= x 100)))
`
	hg, err := chcparse.Parse(src)
	require.NoError(t, err)

	factory := scriptedFactory(map[string][]mock.Result{
		"Base":    {{Status: smt.Sat}, {Status: smt.Unsat}},
		"StepFwd": {{Status: smt.Unsat}},
	})

	res, err := Solve(context.Background(), hg, factory, config.Default())
	require.NoError(t, err)
	assert.Equal(t, witness.Safe, res.Answer)
	require.NotNil(t, res.Valid)
	assert.Contains(t, res.Valid.Invariant, "b")
	// a was contracted away before the solver ever ran; the witness
	// translator still reports a (weak, but sound) invariant for it.
	assert.Contains(t, res.Valid.Invariant, "a")
}

// TestSolveScenarioD is spec.md §8 scenario D: a two-variable relation
// whose safety property is 2-inductive but not 1-inductive, so
// k-induction only reaches a verdict at k=1 and the resulting
// k-inductive invariant must be strengthened via pkg/invariant (spec.md
// §4.7) before it is reported. Adapted from the spec's literal example
// (which keys the alternation off "x_odd", a modular-arithmetic
// condition this term layer has no builtin for, per spec.md §1's
// Non-goals on quantifier elimination and non-linear arithmetic): y
// here plays the same alternating role directly, so the induction
// still cannot close at k=0 and only closes at k=1, without needing
// mod.
func TestSolveScenarioD(t *testing.T) {
	src := `
(declare-rel r (Int Int))
(rule (=> (and (= x 0) (= y 0)) (r x y)))
(rule (=> (and (r x y) (= y 0) (= xp (+ x 1)) (= yp 1)) (r xp yp)))
(rule (=> (and (r x y) (= y 1) (= xp x) (= yp 0)) (r xp yp)))
(query (and (r x y) (> x 0) (= y 1)))
`
	hg, err := chcparse.Parse(src)
	require.NoError(t, err)

	factory := scriptedFactory(map[string][]mock.Result{
		"Base":    {{Status: smt.Sat}, {Status: smt.Unsat}, {Status: smt.Unsat}},
		"StepFwd": {{Status: smt.Sat}, {Status: smt.Unsat}},
		"StepBwd": {{Status: smt.Sat}},
	})

	res, err := Solve(context.Background(), hg, factory, config.Default())
	require.NoError(t, err)
	assert.Equal(t, witness.Safe, res.Answer)
	require.NotNil(t, res.Valid)
	assert.Contains(t, res.Valid.Invariant, "r")
}

// TestSolveScenarioE is spec.md §8 scenario E: a counter that would
// need 2^20 concrete steps to reach Bad, decided instead by the
// accelerated engine's LT(n) fixed-point check (pkg/accel.TryFixedPoint)
// after only a handful of doublings — k-induction would need k on the
// order of the bound itself, which this test does not attempt.
func TestSolveScenarioE(t *testing.T) {
	src := `
(declare-rel p (Int))
(rule (=> (= x 0) (p x)))
(rule (=> (and (p x) (< x 1048576) (= xp (+ x 1))) (p xp)))
(query (and (p x) (>= x 1048576)))
`
	hg, err := chcparse.Parse(src)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Engine = config.AccelSplit

	// Every fixed-point check takes a fresh solver from the factory, so
	// each "LessThanFixedPoint" solver is handed the next verdict of this
	// sequence instead of replaying it from the start.
	scripted := scriptedFactory(map[string][]mock.Result{
		"Reach": {{Status: smt.Unsat}, {Status: smt.Unsat}, {Status: smt.Unsat}},
	})
	fixedPoint := []mock.Result{{Status: smt.Sat}, {Status: smt.Unsat}}
	factory := func(name string) smt.Solver {
		if name == "LessThanFixedPoint" && len(fixedPoint) > 0 {
			next := fixedPoint[:1]
			fixedPoint = fixedPoint[1:]

			return mock.New(name, next)
		}

		return scripted(name)
	}

	res, err := Solve(context.Background(), hg, factory, cfg)
	require.NoError(t, err)
	assert.Equal(t, witness.Safe, res.Answer)
	require.NotNil(t, res.Valid)
	assert.Contains(t, res.Valid.Invariant, "p")
}

// TestSolveScenarioF is spec.md §8 scenario F: a non-linear graph
// whose hyperedge survives the rewriter (two distinct atoms feed one
// clause), so the graph never reaches the single-loop shape and the
// verdict is UNKNOWN without ever touching the SMT layer.
func TestSolveScenarioF(t *testing.T) {
	src := `
(declare-rel c (Int))
(declare-rel d (Int))
(declare-rel m (Int))
(rule (c 0))
(rule (d 0))
(rule (=> (and (c x) (d y)) (m x)))
(query (m x))
`
	hg, err := chcparse.Parse(src)
	require.NoError(t, err)

	unusedFactory := scriptedFactory(nil)

	res, err := Solve(context.Background(), hg, unusedFactory, config.Default())
	require.NoError(t, err)
	assert.Equal(t, witness.Unknown, res.Answer)
	assert.Nil(t, res.Valid)
	assert.Nil(t, res.Invalid)
}

func TestSolveRejectsUnknownEngineKind(t *testing.T) {
	src := `
(declare-rel inv (Int))
(rule (inv 0))
(rule (=> (and (inv x) (= xp (+ x 1))) (inv xp)))
(query (inv x))
`
	hg, err := chcparse.Parse(src)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Engine = config.EngineKind(99)

	_, err = Solve(context.Background(), hg, scriptedFactory(nil), cfg)
	require.Error(t, err)
}
