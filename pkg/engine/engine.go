// Package engine is the top-level driver of spec.md §9 Design Note
// "Polymorphic engines": it rewrites a CHC hypergraph, extracts its
// transition system, dispatches to whichever solveTransitionSystem
// variant cfg.Engine names, and lifts the resulting witness back onto
// the original, pre-rewrite graph's vertex set. Grounded structurally
// on original_source/src/engine/Kind.cc's top-level
// solve(ChcDirectedHyperGraph&) entry point.
package engine

import (
	"context"
	"fmt"

	"github.com/hornverify/hornverify/pkg/accel"
	"github.com/hornverify/hornverify/pkg/accel/single"
	"github.com/hornverify/hornverify/pkg/config"
	"github.com/hornverify/hornverify/pkg/errs"
	"github.com/hornverify/hornverify/pkg/graph"
	"github.com/hornverify/hornverify/pkg/hlog"
	"github.com/hornverify/hornverify/pkg/kind"
	"github.com/hornverify/hornverify/pkg/rewrite"
	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/term"
	"github.com/hornverify/hornverify/pkg/tsextract"
	"github.com/hornverify/hornverify/pkg/witness"
)

// TransitionSystemSolver is the closed interface every
// solveTransitionSystem variant implements (spec.md §9 "Polymorphic
// engines"): pkg/kind.Engine, pkg/accel.Engine and
// pkg/accel/single.Engine.
type TransitionSystemSolver interface {
	Solve(ctx context.Context, ts tsextract.TS, factory smt.Factory, cfg config.Config) (witness.Result, error)
}

// VerificationResult is the outcome of solving a whole CHC hypergraph,
// reported in terms of the graph's own predicate names rather than
// the single loop vertex the rewriter and extractor reduced it to.
type VerificationResult struct {
	Answer  witness.Answer
	Valid   *witness.ValidityWitness
	Invalid *witness.InvalidityWitness
}

// Solve rewrites hg, extracts its transition system, and dispatches to
// the solver cfg.Engine names. hg is mutated in place by the rewriter
// (mirroring pkg/rewrite.Transform's own contract); callers that still
// need the original hypergraph should parse or copy it again first.
//
// A non-fatal failure (the rewritten graph is not a transition system,
// or the chosen solver's underlying SMT context reports an error) is
// mapped onto VerificationResult{Answer: witness.Unknown} rather than
// returned as an error, per spec.md §7's fatal/non-fatal split
// (errs.IsFatal). Only a genuinely fatal internal-consistency error
// propagates, plus an unknown cfg.Engine, which is reported as an error
// once the graph has been reduced to a transition system.
func Solve(ctx context.Context, hg *graph.HyperGraph, factory smt.Factory, cfg config.Config) (VerificationResult, error) {
	log := hlog.For("engine")
	store := hg.Store()

	origNames := namedVertices(hg)

	rewritten, wt, err := rewrite.Transform(hg)
	if err != nil {
		if errs.IsFatal(err) {
			return VerificationResult{}, err
		}

		log.WithField("reason", err.Error()).Info("rewrite reported a non-fatal failure")

		return VerificationResult{Answer: witness.Unknown}, nil
	}

	normal, err := rewritten.ToNormalGraph()
	if err != nil {
		log.WithField("reason", err.Error()).Info("graph is not normal after rewriting")

		return VerificationResult{Answer: witness.Unknown}, nil
	}

	loop, ok := onlyNonTerminal(normal)
	if !ok {
		log.Info("rewritten graph is not of the entry -> L -> exit single-loop shape")

		return VerificationResult{Answer: witness.Unknown}, nil
	}

	ts, err := tsextract.ToTransitionSystem(normal)
	if err != nil {
		log.WithField("reason", err.Error()).Info("transition-system extraction failed")

		return VerificationResult{Answer: witness.Unknown}, nil
	}

	solver, err := pickSolver(store, cfg.Engine)
	if err != nil {
		return VerificationResult{}, err
	}

	res, err := solver.Solve(ctx, ts, factory, cfg)
	if err != nil {
		// SolverFailure is never fatal (spec.md §7 Policy): a raw
		// solver-layer error is reported as UNKNOWN, not bubbled up.
		wrapped := &errs.SolverFailure{Op: cfg.Engine.String(), Err: err}
		log.WithField("reason", wrapped.Error()).Info("solver reported a non-fatal failure")

		return VerificationResult{Answer: witness.Unknown}, nil
	}

	if !cfg.ComputeWitness {
		return VerificationResult{Answer: res.Answer}, nil
	}

	return liftResult(res, store, wt, origNames, loop, ts.A), nil
}

func pickSolver(store *term.Store, k config.EngineKind) (TransitionSystemSolver, error) {
	switch k {
	case config.Kind:
		return kind.New(store), nil
	case config.AccelSplit:
		return accel.New(store), nil
	case config.AccelSingle:
		return single.New(store), nil
	default:
		return nil, fmt.Errorf("engine: unknown engine kind %v", k)
	}
}

// namedVertices snapshots every non-terminal vertex's name, keyed by
// id, before the rewriter has a chance to delete any of them: the
// witness translator needs this to report an invariant for a vertex
// the rewriter contracted away.
func namedVertices(hg *graph.HyperGraph) map[graph.VertexID]string {
	names := make(map[graph.VertexID]string)

	for _, v := range hg.Vertices() {
		if v == hg.Entry() || v == hg.Exit() {
			continue
		}

		names[v] = hg.Vertex(v).Name
	}

	return names
}

// onlyNonTerminal returns g's single non-entry, non-exit vertex, the
// one tsextract.ToTransitionSystem is about to read off as the loop
// predicate. It mirrors tsextract.IsTransitionSystem's own shape
// check, duplicated here only because that check is unexported.
func onlyNonTerminal(g *graph.Graph) (graph.VertexID, bool) {
	var loop graph.VertexID

	found := false

	for _, v := range g.Vertices() {
		if v == g.Entry() || v == g.Exit() {
			continue
		}

		if found {
			return 0, false
		}

		loop, found = v, true
	}

	return loop, found
}

func liftResult(res witness.Result, store *term.Store, wt *rewrite.WitnessTranslator, origNames map[graph.VertexID]string, loop graph.VertexID, loopName string) VerificationResult {
	switch res.Answer {
	case witness.Unsafe:
		return VerificationResult{Answer: witness.Unsafe, Invalid: res.Invalid}
	case witness.Safe:
		byID := map[graph.VertexID]term.Term{loop: res.Valid.Invariant[loopName]}
		translated := wt.TranslateValidity(byID, store)

		byName := make(map[string]term.Term, len(translated))
		for id, inv := range translated {
			if name, ok := origNames[id]; ok {
				byName[name] = inv
			}
		}

		return VerificationResult{Answer: witness.Safe, Valid: &witness.ValidityWitness{Invariant: byName}}
	default:
		return VerificationResult{Answer: witness.Unknown}
	}
}
