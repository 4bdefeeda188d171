package accel

import (
	"context"
	"fmt"

	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/term"
	"github.com/hornverify/hornverify/pkg/tsextract"
	"github.com/hornverify/hornverify/pkg/witness"
)

// Replay re-derives a concrete counterexample of length at most bound
// by plain, unaccelerated BMC unrolling against a fresh solver
// context. It never trusts a doubled/composed relation for witness
// extraction, only for deciding that a witness exists within bound
// steps: Compose's renaming keeps those relations sound for that
// decision, but reconstructing the individual steps of the concrete
// path they summarize would require walking their doubling tree
// (AcceleratedBmc.h's extractMidPoint/refineTwoStepTarget); direct
// replay is simpler and no less correct, at the cost of up to bound+1
// solver calls on the rare path where a witness actually exists.
func Replay(ctx context.Context, store *term.Store, ts tsextract.TS, factory smt.Factory, bound uint64) (witness.Result, error) {
	tm := term.NewTimeMachine(store)
	solver := factory("Replay")
	solver.Assert(ts.Init)

	for length := uint64(0); length <= bound; length++ {
		solver.Push()
		solver.Assert(tm.SendThroughTime(ts.Bad, int(length)))

		status, err := solver.Check(ctx)
		if err != nil {
			return witness.Result{}, err
		}

		if status == smt.Sat {
			return UnsafeFromModel(store, ts, solver.Model(), int(length))
		}

		solver.Pop()
		solver.Assert(tm.SendThroughTime(ts.Tr, int(length)))
	}

	return witness.Result{}, fmt.Errorf("accel: doubling reported a witness within %d steps but replay found none", bound)
}

// UnsafeFromModel builds the UNSAFE witness.Result for a k-step
// counterexample whose states were read off model at each time index
// 0..k, mirroring pkg/kind's own construction.
func UnsafeFromModel(store *term.Store, ts tsextract.TS, model smt.Model, k int) (witness.Result, error) {
	steps := make([]witness.Step, k+1)

	for i := 0; i <= k; i++ {
		values := make(map[term.VarKey]int64, len(ts.X))

		for _, x := range ts.X {
			if v, ok := model.Eval(term.VarKey{Base: x.Base, Time: i}); ok {
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
