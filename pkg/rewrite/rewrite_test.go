package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hornverify/hornverify/pkg/graph"
	"github.com/hornverify/hornverify/pkg/term"
)

// buildChain builds entry -> a -> b -> loop(self-loop) -> exit, the
// shape the rewriter is expected to collapse down to a single
// self-loop transition system.
func buildChain(t *testing.T) (*graph.HyperGraph, graph.VertexID) {
	t.Helper()

	store := term.NewStore()
	hg := graph.NewHyperGraph(store)

	args := []graph.Arg{{Name: "x", Sort: term.Int}}
	a := hg.AddVertex("a", args)
	b := hg.AddVertex("b", args)
	loop := hg.AddVertex("loop", args)

	x0 := term.VarKey{Base: "x", Time: 0}
	x1 := term.VarKey{Base: "x", Time: 1}

	hg.AddEdge([]graph.VertexID{hg.Entry()}, a, store.Eq(store.Var(x1, term.Int), store.IntLit(0)))
	hg.AddEdge([]graph.VertexID{a}, b, store.Eq(store.Var(x1, term.Int), store.Var(x0, term.Int)))
	hg.AddEdge([]graph.VertexID{b}, loop, store.Eq(store.Var(x1, term.Int), store.Var(x0, term.Int)))
	hg.AddEdge([]graph.VertexID{loop}, loop, store.Eq(store.Var(x1, term.Int), store.Add(store.Var(x0, term.Int), store.IntLit(1))))
	hg.AddEdge([]graph.VertexID{loop}, hg.Exit(), store.Lt(store.Var(x0, term.Int), store.IntLit(0)))

	return hg, loop
}

func TestTransformCollapsesChainToSingleLoop(t *testing.T) {
	hg, loop := buildChain(t)

	out, wt, err := Transform(hg)
	require.NoError(t, err)
	require.NotNil(t, wt)

	remaining := 0
	for _, v := range out.Vertices() {
		if v != out.Entry() && v != out.Exit() {
			remaining++
		}
	}

	assert.Equal(t, 1, remaining, "rewriter should collapse the linear chain down to the loop vertex")
	assert.NotNil(t, out.Vertex(loop))

	for _, e := range out.Edges() {
		assert.Len(t, e.From, 1, "rewriter must never leave a hyperedge with more than one source")
	}
}

func TestTransformIsIdempotentOnAlreadyNormalShape(t *testing.T) {
	store := term.NewStore()
	hg := graph.NewHyperGraph(store)

	loop := hg.AddVertex("loop", []graph.Arg{{Name: "x", Sort: term.Int}})

	x0 := term.VarKey{Base: "x", Time: 0}
	x1 := term.VarKey{Base: "x", Time: 1}

	hg.AddEdge([]graph.VertexID{hg.Entry()}, loop, store.Eq(store.Var(x1, term.Int), store.IntLit(0)))
	hg.AddEdge([]graph.VertexID{loop}, loop, store.Eq(store.Var(x1, term.Int), store.Add(store.Var(x0, term.Int), store.IntLit(1))))
	hg.AddEdge([]graph.VertexID{loop}, hg.Exit(), store.Lt(store.Var(x0, term.Int), store.IntLit(0)))

	before := len(hg.Edges())

	out, _, err := Transform(hg)
	require.NoError(t, err)
	assert.Equal(t, before, len(out.Edges()))
}

func TestTransformBlocksOnNonLinearHyperedge(t *testing.T) {
	store := term.NewStore()
	hg := graph.NewHyperGraph(store)

	p := hg.AddVertex("p", nil)
	mid := hg.AddVertex("mid", nil)
	loop := hg.AddVertex("loop", nil)

	hg.AddEdge([]graph.VertexID{hg.Entry(), p}, mid, store.True())
	hg.AddEdge([]graph.VertexID{mid}, loop, store.True())
	hg.AddEdge([]graph.VertexID{loop}, loop, store.True())
	hg.AddEdge([]graph.VertexID{loop}, hg.Exit(), store.True())

	out, wt, err := Transform(hg)
	require.NoError(t, err)
	require.NotNil(t, wt)

	// mid carries an incident hyperedge, so it must survive contraction.
	assert.NotNil(t, out.Vertex(mid))
}

func TestTransformDropsFalseEdges(t *testing.T) {
	store := term.NewStore()
	hg := graph.NewHyperGraph(store)

	loop := hg.AddVertex("loop", nil)

	hg.AddEdge([]graph.VertexID{hg.Entry()}, loop, store.False())
	hg.AddEdge([]graph.VertexID{hg.Entry()}, loop, store.True())
	hg.AddEdge([]graph.VertexID{loop}, loop, store.True())
	hg.AddEdge([]graph.VertexID{loop}, hg.Exit(), store.True())

	out, _, err := Transform(hg)
	require.NoError(t, err)

	for _, e := range out.Edges() {
		assert.False(t, store.IsFalse(e.Label))
	}
}

func TestWitnessTranslatorFillsEliminatedVerticesWithTrue(t *testing.T) {
	hg, loop := buildChain(t)

	_, wt, err := Transform(hg)
	require.NoError(t, err)

	invariant := map[graph.VertexID]term.Term{loop: hg.Store().True()}
	translated := wt.TranslateValidity(invariant, hg.Store())

	for _, rec := range wt.eliminated {
		got, ok := translated[rec.vertex]
		require.True(t, ok)
		assert.True(t, hg.Store().IsTrue(got))
	}
}
