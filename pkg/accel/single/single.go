// Package single implements the single-hierarchy variant of the
// power-doubling accelerator (spec.md §4.6), grounded on
// AcceleratedBmcSingle in
// original_source/src/engine/AcceleratedBmc.h. Where pkg/accel tracks
// an exact-length relation and an at-most-length relation separately,
// this variant keeps only one: because its relation is reflexive from
// the start (pkg/accel.ReflexiveStep), composing it with itself
// already accumulates every length up to the new bound, so no separate
// union step is needed. Verification simplifies accordingly to a
// single fixed-point check per level (pkg/accel.TryFixedPoint), in
// place of pkg/accel's separate verifyLessThanPower/verifyExactPower
// pair.
package single

import (
	"context"

	"github.com/hornverify/hornverify/pkg/accel"
	"github.com/hornverify/hornverify/pkg/config"
	"github.com/hornverify/hornverify/pkg/hlog"
	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/term"
	"github.com/hornverify/hornverify/pkg/tsextract"
	"github.com/hornverify/hornverify/pkg/witness"
)

// Engine is the single-hierarchy power-doubling accelerator.
type Engine struct {
	store *term.Store
}

// New returns an accelerated-reachability engine operating over terms
// interned in store.
func New(store *term.Store) *Engine { return &Engine{store: store} }

// Solve mirrors pkg/accel.Engine.Solve's structure with a single
// relation hierarchy in place of the split exact/lessThan pair.
func (e *Engine) Solve(ctx context.Context, ts tsextract.TS, factory smt.Factory, cfg config.Config) (witness.Result, error) {
	log := hlog.For("accel-single")
	store := e.store

	badAtNext := store.Substitute(ts.Bad, accel.VarSubst(store, ts.X, ts.Xp, ts.Sorts))

	solver := factory("Reach")
	rel := accel.ReflexiveStep(store, ts)
	bound := uint64(1)

	for level := uint(0); cfg.MaxK == 0 || level <= cfg.MaxK; level++ {
		log.WithField("level", level).WithField("bound", bound).Debug("checking single-hierarchy reachability")

		solver.Push()
		solver.Assert(ts.Init)
		solver.Assert(rel)
		solver.Assert(badAtNext)

		status, err := solver.Check(ctx)
		solver.Pop()

		if err != nil {
			return witness.Result{}, err
		}

		if status == smt.Sat {
			return accel.Replay(ctx, store, ts, factory, bound)
		}

		if safe, ok, err := accel.TryFixedPoint(ctx, store, ts, factory, rel, int(level)); err != nil {
			return witness.Result{}, err
		} else if ok {
			log.WithField("level", level).Info("transition hierarchy reached a fixed point")
			return safe, nil
		}

		rel = accel.Compose(store, ts, rel, rel, int(level)+1)
		bound *= 2
	}

	return witness.Result{Answer: witness.Unknown}, nil
}
