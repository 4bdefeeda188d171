// Package rewrite implements the Graph Rewriter of spec.md §4.1: a
// fixpoint pipeline of multi-edge merge, non-loop vertex contraction
// and false-clause removal that shapes an arbitrary normalised
// hypergraph into one with a single self-loop per non-terminal
// vertex, the precondition transition-system extraction needs.
// Grounded on original_source/src/graph/ChcGraph.cc
// (mergeMultiEdges, contractVertex, deleteFalseEdges) and
// TransformationUtils.h / BasicTransformationPipelines.h for stage
// ordering.
package rewrite

import (
	"github.com/hornverify/hornverify/pkg/errs"
	"github.com/hornverify/hornverify/pkg/graph"
	"github.com/hornverify/hornverify/pkg/term"
)

// eliminationRecord captures one non-loop contraction, enough to
// answer where a vertex that no longer exists in the rewritten graph
// sat in the original one.
type eliminationRecord struct {
	vertex   graph.VertexID
	incoming []graph.VertexID
	outgoing []graph.VertexID
}

// WitnessTranslator lifts a witness of the rewritten graph back onto
// the original graph passed to Transform, per spec.md §4.1's
// `transform(graph) -> (graph', witnessTranslator)` contract.
type WitnessTranslator struct {
	eliminated []eliminationRecord
}

// TranslateValidity lifts a per-vertex 1-inductive invariant map
// computed on the rewritten graph back onto the original graph's
// vertex set. Vertices eliminated by contraction carry no direct
// invariant in the rewritten problem; since they were contracted away
// (never appearing in the extracted transition system), the weakest
// sound invariant `true` is reported for them unless a caller already
// recorded something stronger.
func (wt *WitnessTranslator) TranslateValidity(invariant map[graph.VertexID]term.Term, store *term.Store) map[graph.VertexID]term.Term {
	out := make(map[graph.VertexID]term.Term, len(invariant)+len(wt.eliminated))

	for v, inv := range invariant {
		out[v] = inv
	}

	for _, rec := range wt.eliminated {
		if _, ok := out[rec.vertex]; !ok {
			out[rec.vertex] = store.True()
		}
	}

	return out
}

// Transform applies the rewriter pipeline of spec.md §4.1 to hg,
// returning the rewritten hypergraph and a translator able to lift a
// witness of the rewritten problem back onto hg's vertex set.
//
// hg is mutated in place (mirroring original_source's in-place
// ChcDirectedHyperGraph transformation passes); callers that need the
// pre-rewrite graph should keep their own copy.
func Transform(hg *graph.HyperGraph) (*graph.HyperGraph, *WitnessTranslator, error) {
	wt := &WitnessTranslator{}

	hg.MergeMultiEdges()

	for {
		progressed, err := contractOnePass(hg, wt)
		if err != nil {
			return nil, nil, err
		}

		hg.DeleteFalseEdges()
		merged := hg.MergeMultiEdges()

		if !progressed && !merged {
			break
		}
	}

	return hg, wt, nil
}

// contractOnePass attempts to contract every eligible non-loop vertex
// once, returning whether any contraction happened.
func contractOnePass(hg *graph.HyperGraph, wt *WitnessTranslator) (bool, error) {
	progressed := false

	for _, v := range hg.Vertices() {
		if hg.Vertex(v) == nil {
			continue
		}

		if !eligibleForContraction(hg, v) {
			continue
		}

		adj := graph.NewAdjacency(hg)
		incoming := edgeSources(hg, adj.Incoming(v))
		outgoing := edgeTargets(hg, adj.Outgoing(v))

		if _, err := hg.ContractVertex(v); err != nil {
			if _, ok := err.(*errs.ContractionBlocker); ok {
				continue
			}

			return false, err
		}

		wt.eliminated = append(wt.eliminated, eliminationRecord{vertex: v, incoming: incoming, outgoing: outgoing})
		progressed = true
	}

	return progressed, nil
}

// eligibleForContraction reports whether v is a candidate for
// non-loop elimination: it is neither entry nor exit, and carries no
// self-loop (spec.md §4.1 stage 2).
func eligibleForContraction(hg *graph.HyperGraph, v graph.VertexID) bool {
	if v == hg.Entry() || v == hg.Exit() {
		return false
	}

	for _, e := range hg.Edges() {
		if e.To == v {
			for _, src := range e.From {
				if src == v {
					return false
				}
			}
		}
	}

	return true
}

func edgeSources(hg *graph.HyperGraph, ids []graph.EdgeID) []graph.VertexID {
	var out []graph.VertexID

	for _, id := range ids {
		out = append(out, hg.Edge(id).From...)
	}

	return out
}

func edgeTargets(hg *graph.HyperGraph, ids []graph.EdgeID) []graph.VertexID {
	out := make([]graph.VertexID, len(ids))

	for i, id := range ids {
		out[i] = hg.Edge(id).To
	}

	return out
}
