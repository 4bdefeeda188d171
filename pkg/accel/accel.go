// Package accel implements the split Exact/LessThan power-doubling
// reachability accelerator of spec.md §4.6: rather than growing the
// unrolling bound by one step per round like pkg/kind, it squares its
// transition relation every round, so a fixed number of SMT queries
// covers an exponentially large number of concrete steps. Each round
// can end three ways: REACHABLE (a Bad state is within LT(n), replayed
// into a concrete counterexample), a LT(n) fixed point (SAFE, via
// TryFixedPoint/checkLessThanFixedPoint), or neither, in which case the
// relations double again. The fixed-point check needs no Craig
// interpolation, which this module's SMT backends only approximate
// anyway (pkg/smt/z3/doc.go documents the Z3 backend's
// A-part-conjunction stand-in) — it is a single direct UNSAT query, so
// it stays sound regardless. Grounded on
// original_source/src/engine/AcceleratedBmc.h's exactPowers/
// lessThanPowers vectors, reachabilityQueryExact/
// reachabilityQueryLessThan and checkPower's three-way branch.
package accel

import (
	"context"

	"github.com/hornverify/hornverify/pkg/config"
	"github.com/hornverify/hornverify/pkg/hlog"
	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/term"
	"github.com/hornverify/hornverify/pkg/tsextract"
	"github.com/hornverify/hornverify/pkg/witness"
)

// Engine is the dual-hierarchy (exact-length and at-most-length)
// power-doubling accelerator.
type Engine struct {
	store *term.Store
}

// New returns an accelerated-reachability engine operating over terms
// interned in store.
func New(store *term.Store) *Engine { return &Engine{store: store} }

// Solve doubles its reachability bound once per iteration, up to
// cfg.MaxK doublings (0 means unbounded, subject only to ctx): here
// "k" counts doublings, not unrolling steps, so a bound of 20 already
// reaches past a million concrete steps.
func (e *Engine) Solve(ctx context.Context, ts tsextract.TS, factory smt.Factory, cfg config.Config) (witness.Result, error) {
	log := hlog.For("accel")
	store := e.store

	badAtNext := store.Substitute(ts.Bad, VarSubst(store, ts.X, ts.Xp, ts.Sorts))

	solver := factory("Reach")

	if hit, err := reaches(ctx, solver, ts.Init, store.True(), ts.Bad); err != nil {
		return witness.Result{}, err
	} else if hit {
		return Replay(ctx, store, ts, factory, 0)
	}

	exact := ts.Tr
	lessThan := ReflexiveStep(store, ts)
	bound := uint64(1)

	for level := uint(0); cfg.MaxK == 0 || level <= cfg.MaxK; level++ {
		log.WithField("level", level).WithField("bound", bound).Debug("checking accumulated reachability")

		hit, err := reaches(ctx, solver, ts.Init, lessThan, badAtNext)
		if err != nil {
			return witness.Result{}, err
		}

		if hit {
			return Replay(ctx, store, ts, factory, bound)
		}

		if safe, ok, err := TryFixedPoint(ctx, store, ts, factory, lessThan, int(level)); err != nil {
			return witness.Result{}, err
		} else if ok {
			log.WithField("level", level).Info("less-than relation reached a fixed point")
			return safe, nil
		}

		next := int(level) + 1
		nextExact := Compose(store, ts, exact, exact, next)
		lessThan = store.Or(lessThan, Compose(store, ts, lessThan, exact, next))
		exact = nextExact
		bound *= 2
	}

	return witness.Result{Answer: witness.Unknown}, nil
}

func reaches(ctx context.Context, solver smt.Solver, init, rel, badAtEnd term.Term) (bool, error) {
	solver.Push()
	defer solver.Pop()

	solver.Assert(init)
	solver.Assert(rel)
	solver.Assert(badAtEnd)

	status, err := solver.Check(ctx)
	if err != nil {
		return false, err
	}

	return status == smt.Sat, nil
}
