// Package kind implements the k-Induction Engine of spec.md §4.5:
// three incremental SMT contexts (Base, StepFwd, StepBwd) walked
// forward in lockstep, each extended one unrolling at a time, until
// either a counterexample is found or a k-inductive invariant is
// discovered. Grounded structurally (not line-for-line) on
// original_source/src/engine/Kind.cc's solveTransitionSystem.
package kind

import (
	"context"
	"fmt"

	"github.com/hornverify/hornverify/pkg/config"
	"github.com/hornverify/hornverify/pkg/hlog"
	"github.com/hornverify/hornverify/pkg/invariant"
	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/term"
	"github.com/hornverify/hornverify/pkg/tsextract"
	"github.com/hornverify/hornverify/pkg/witness"
)

// Engine is the k-induction transition-system solver. Its zero value
// is ready to use.
type Engine struct {
	store *term.Store
}

// New returns a k-induction engine operating over terms interned in
// store.
func New(store *term.Store) *Engine {
	return &Engine{store: store}
}

// Solve runs k-induction on ts, unrolling until maxK (0 means
// unbounded, subject only to ctx's deadline) or until a verdict is
// reached (spec.md §4.5).
func (e *Engine) Solve(ctx context.Context, ts tsextract.TS, factory smt.Factory, cfg config.Config) (witness.Result, error) {
	log := hlog.For("kind")
	store := e.store
	tm := term.NewTimeMachine(store)

	base := factory("Base")
	stepFwd := factory("StepFwd")
	stepBwd := factory("StepBwd")

	base.Assert(ts.Init)
	stepFwd.Assert(ts.Bad)
	stepBwd.Assert(ts.Init)

	reversed := tsextract.Reverse(ts, store)

	status, live, err := checkLive(ctx, base)
	if err != nil {
		return witness.Result{}, err
	}

	if !live {
		return unknownResult(), nil
	}

	if status == smt.Unsat {
		log.Debug("init is unreachable at k=0")
		return safeResult(ts.A, store.False()), nil
	}

	for k := uint(0); cfg.MaxK == 0 || k <= cfg.MaxK; k++ {
		log.WithField("k", k).Debug("base step")

		badK := tm.SendThroughTime(ts.Bad, int(k))

		base.Push()
		base.Assert(badK)

		status, live, err = checkLive(ctx, base)
		if err != nil {
			return witness.Result{}, err
		}

		if !live {
			return unknownResult(), nil
		}

		if status == smt.Sat {
			return unsafeResult(ts, base.Model(), int(k))
		}

		base.Pop()
		trK := tm.SendThroughTime(ts.Tr, int(k))
		base.Assert(trK)

		log.WithField("k", k).Debug("forward induction step")

		status, live, err = checkLive(ctx, stepFwd)
		if err != nil {
			return witness.Result{}, err
		}

		if !live {
			return unknownResult(), nil
		}

		if status == smt.Unsat {
			log.WithField("k", k).Info("not-bad is k-inductive")
			return e.strengthenAndReturn(ts, store, k, negate(store, ts.Bad))
		}

		trInvK := tm.SendThroughTime(reversed.Tr, int(k))
		stepFwd.Assert(trInvK)
		stepFwd.Assert(tm.SendThroughTime(negate(store, ts.Bad), int(k)+1))

		log.WithField("k", k).Debug("backward induction step")

		status, live, err = checkLive(ctx, stepBwd)
		if err != nil {
			return witness.Result{}, err
		}

		if !live {
			return unknownResult(), nil
		}

		if status == smt.Unsat {
			log.WithField("k", k).Info("not-init is k-inductive under the reversed system")
			return e.strengthenAndReturn(ts, store, k, negate(store, ts.Init))
		}

		stepBwd.Assert(trK)
		stepBwd.Assert(tm.SendThroughTime(negate(store, ts.Init), int(k)+1))
	}

	return unknownResult(), nil
}

func negate(store *term.Store, fla term.Term) term.Term { return store.Not(fla) }

// checkLive checks s unless ctx is already done, in which case it
// reports live=false so the caller can map cancellation onto verdict
// UNKNOWN (spec.md §5) instead of a propagated error.
func checkLive(ctx context.Context, s smt.Solver) (status smt.Status, live bool, err error) {
	if ctx.Err() != nil {
		return smt.Unknown, false, nil
	}

	status, err = s.Check(ctx)

	return status, true, err
}

func unknownResult() witness.Result { return witness.Result{Answer: witness.Unknown} }

// strengthenAndReturn converts the k-inductive invariant kInv into a
// 1-inductive one via pkg/invariant (spec.md §4.7) before reporting
// SAFE.
func (e *Engine) strengthenAndReturn(ts tsextract.TS, store *term.Store, k uint, kInv term.Term) (witness.Result, error) {
	oneInductive, err := invariant.KinductiveToInductive(store, ts, kInv, int(k)+1)
	if err != nil {
		return witness.Result{}, fmt.Errorf("kind: invariant strengthening failed: %w", err)
	}

	return safeResult(ts.A, oneInductive), nil
}

func safeResult(name string, invariantFla term.Term) witness.Result {
	return witness.Result{
		Answer: witness.Safe,
		Valid:  &witness.ValidityWitness{Invariant: map[string]term.Term{name: invariantFla}},
	}
}

func unsafeResult(ts tsextract.TS, model smt.Model, k int) (witness.Result, error) {
	steps := make([]witness.Step, k+1)

	for i := 0; i <= k; i++ {
		values := make(map[term.VarKey]int64, len(ts.X))

		for _, x := range ts.X {
			shifted := term.VarKey{Base: x.Base, Time: i}

			if v, ok := model.Eval(shifted); ok {
				values[x] = v
			}
		}

		steps[i] = witness.Step{Values: values}
	}

	return witness.Result{
		Answer:  witness.Unsafe,
		Invalid: &witness.InvalidityWitness{Length: k, Steps: steps},
	}, nil
}
