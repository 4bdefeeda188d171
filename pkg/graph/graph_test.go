package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hornverify/hornverify/pkg/term"
)

// TestReverseRemapsEntryExit is the regression test spec.md §9 asks
// for: reversing a graph keeps its entry and exit vertices but must
// swap entry and exit on every edge endpoint that touched them, rather
// than silently mirroring Golem's swapTrueFalse-computed-but-discarded
// bug.
func TestReverseRemapsEntryExit(t *testing.T) {
	store := term.NewStore()
	g := NewGraph(store)

	loop := g.AddVertex("loop", []Arg{{Name: "x", Sort: term.Int}})

	x0 := term.VarKey{Base: "x", Time: 0}
	x1 := term.VarKey{Base: "x", Time: 1}

	initEdge := g.AddEdge(g.Entry(), loop, store.Eq(store.Var(x0, term.Int), store.IntLit(0)))
	loopEdge := g.AddEdge(loop, loop, store.Eq(store.Var(x1, term.Int), store.Add(store.Var(x0, term.Int), store.IntLit(1))))
	badEdge := g.AddEdge(loop, g.Exit(), store.Lt(store.Var(x0, term.Int), store.IntLit(0)))

	r := g.Reverse()

	assert.Equal(t, g.Entry(), r.Entry())
	assert.Equal(t, g.Exit(), r.Exit())

	initRev := r.Edge(initEdge)
	require.NotNil(t, initRev)
	assert.Equal(t, loop, initRev.From, "reversed init edge should now originate at loop")
	assert.Equal(t, r.Exit(), initRev.To, "reversed init edge must land on exit (its old entry endpoint remapped)")

	loopRev := r.Edge(loopEdge)
	require.NotNil(t, loopRev)
	assert.Equal(t, loop, loopRev.From)
	assert.Equal(t, loop, loopRev.To)

	badRev := r.Edge(badEdge)
	require.NotNil(t, badRev)
	assert.Equal(t, r.Entry(), badRev.From, "reversed bad edge must originate at entry (its old exit endpoint remapped)")
	assert.Equal(t, loop, badRev.To)
}

func TestReverseTwiceRestoresEndpoints(t *testing.T) {
	store := term.NewStore()
	g := NewGraph(store)

	loop := g.AddVertex("loop", []Arg{{Name: "x", Sort: term.Int}})
	x0 := term.VarKey{Base: "x", Time: 0}

	e := g.AddEdge(g.Entry(), loop, store.Eq(store.Var(x0, term.Int), store.IntLit(0)))

	rr := g.Reverse().Reverse()

	assert.Equal(t, g.Entry(), rr.Entry())
	assert.Equal(t, g.Exit(), rr.Exit())

	orig := g.Edge(e)
	back := rr.Edge(e)
	require.NotNil(t, back)
	assert.Equal(t, orig.From, back.From)
	assert.Equal(t, orig.To, back.To)
}

func TestAddVertexAndEdgeRoundTrip(t *testing.T) {
	store := term.NewStore()
	g := NewGraph(store)

	v := g.AddVertex("p", []Arg{{Name: "a", Sort: term.Int}, {Name: "b", Sort: term.Bool}})
	got := g.Vertex(v)

	require.NotNil(t, got)
	assert.Equal(t, "p", got.Name)
	assert.Equal(t, term.Signature{"a", "b"}, got.Signature())

	e := g.AddEdge(g.Entry(), v, store.True())
	assert.NotNil(t, g.Edge(e))

	g.DeleteEdge(e)
	assert.Nil(t, g.Edge(e))
}

func TestToHyperGraphAndBackIsNormal(t *testing.T) {
	store := term.NewStore()
	g := NewGraph(store)

	v := g.AddVertex("p", []Arg{{Name: "x", Sort: term.Int}})
	g.AddEdge(g.Entry(), v, store.True())
	g.AddEdge(v, g.Exit(), store.True())

	hg := g.ToHyperGraph()
	assert.True(t, hg.IsNormal())

	back, err := hg.ToNormalGraph()
	require.NoError(t, err)
	assert.Equal(t, len(g.Vertices()), len(back.Vertices()))
	assert.Equal(t, len(g.Edges()), len(back.Edges()))
}

func TestToNormalGraphRejectsHyperedge(t *testing.T) {
	store := term.NewStore()
	hg := NewHyperGraph(store)

	p := hg.AddVertex("p", []Arg{{Name: "x", Sort: term.Int}})
	q := hg.AddVertex("q", []Arg{{Name: "x", Sort: term.Int}})

	hg.AddEdge([]VertexID{p, q}, hg.Exit(), store.True())

	_, err := hg.ToNormalGraph()
	assert.Error(t, err)
}

func TestMergeMultiEdgesCombinesWithOr(t *testing.T) {
	store := term.NewStore()
	hg := NewHyperGraph(store)

	v := hg.AddVertex("p", []Arg{{Name: "x", Sort: term.Int}})
	x0 := term.VarKey{Base: "x", Time: 0}

	hg.AddEdge([]VertexID{hg.Entry()}, v, store.Eq(store.Var(x0, term.Int), store.IntLit(0)))
	hg.AddEdge([]VertexID{hg.Entry()}, v, store.Eq(store.Var(x0, term.Int), store.IntLit(1)))

	changed := hg.MergeMultiEdges()
	assert.True(t, changed)
	assert.Len(t, hg.Edges(), 1)
}

func TestMergeMultiEdgesSkipsGenuineHyperedges(t *testing.T) {
	store := term.NewStore()
	hg := NewHyperGraph(store)

	p := hg.AddVertex("p", []Arg{{Name: "x", Sort: term.Int}})
	q := hg.AddVertex("q", []Arg{{Name: "x", Sort: term.Int}})

	hg.AddEdge([]VertexID{p, q}, hg.Exit(), store.True())
	hg.AddEdge([]VertexID{p, q}, hg.Exit(), store.True())

	changed := hg.MergeMultiEdges()
	assert.False(t, changed)
	assert.Len(t, hg.Edges(), 2)
}

func TestContractVertexConjoinsLabels(t *testing.T) {
	store := term.NewStore()
	hg := NewHyperGraph(store)

	mid := hg.AddVertex("mid", []Arg{{Name: "x", Sort: term.Int}})

	x0 := term.VarKey{Base: "x", Time: 0}
	x1 := term.VarKey{Base: "x", Time: 1}

	in := hg.AddEdge([]VertexID{hg.Entry()}, mid, store.Eq(store.Var(x1, term.Int), store.IntLit(0)))
	out := hg.AddEdge([]VertexID{mid}, hg.Exit(), store.Lt(store.Var(x0, term.Int), store.IntLit(10)))

	created, err := hg.ContractVertex(mid)
	require.NoError(t, err)
	require.Len(t, created, 1)

	newEdge := hg.Edge(created[0])
	require.NotNil(t, newEdge)
	assert.Equal(t, []VertexID{hg.Entry()}, newEdge.From)
	assert.Equal(t, hg.Exit(), newEdge.To)

	assert.Nil(t, hg.Edge(in))
	assert.Nil(t, hg.Edge(out))
	assert.Nil(t, hg.Vertex(mid))
}

func TestContractVertexBlocksOnHyperedge(t *testing.T) {
	store := term.NewStore()
	hg := NewHyperGraph(store)

	p := hg.AddVertex("p", []Arg{{Name: "x", Sort: term.Int}})
	mid := hg.AddVertex("mid", []Arg{{Name: "x", Sort: term.Int}})

	hg.AddEdge([]VertexID{hg.Entry(), p}, mid, store.True())
	hg.AddEdge([]VertexID{mid}, hg.Exit(), store.True())

	_, err := hg.ContractVertex(mid)
	assert.Error(t, err)
}

func TestDeleteFalseEdges(t *testing.T) {
	store := term.NewStore()
	hg := NewHyperGraph(store)

	v := hg.AddVertex("p", nil)
	hg.AddEdge([]VertexID{hg.Entry()}, v, store.False())
	keep := hg.AddEdge([]VertexID{hg.Entry()}, v, store.True())

	hg.DeleteFalseEdges()

	assert.Len(t, hg.Edges(), 1)
	assert.NotNil(t, hg.Edge(keep))
}

func TestGetSelfLoopFor(t *testing.T) {
	store := term.NewStore()
	g := NewGraph(store)

	v := g.AddVertex("p", nil)
	loopEdge := g.AddEdge(v, v, store.True())
	g.AddEdge(g.Entry(), v, store.True())

	got, ok := GetSelfLoopFor(g, v)
	require.True(t, ok)
	assert.Equal(t, loopEdge, got)

	_, ok = GetSelfLoopFor(g, g.Entry())
	assert.False(t, ok)
}

func TestPostOrderVisitsSuccessorsFirst(t *testing.T) {
	store := term.NewStore()
	g := NewGraph(store)

	a := g.AddVertex("a", nil)
	b := g.AddVertex("b", nil)
	c := g.AddVertex("c", nil)

	g.AddEdge(a, b, store.True())
	g.AddEdge(b, c, store.True())

	order := PostOrder(g, a)
	require.Equal(t, []VertexID{c, b, a}, order)

	rev := ReversePostOrder(g, a)
	require.Equal(t, []VertexID{a, b, c}, rev)
}

func TestVertexInstancesDistinguishesRepeats(t *testing.T) {
	store := term.NewStore()
	hg := NewHyperGraph(store)

	p := hg.AddVertex("p", nil)
	e := hg.AddEdge([]VertexID{p, p}, hg.Exit(), store.True())

	vi := NewVertexInstances(hg)
	assert.Equal(t, 0, vi.InstanceOf(e, 0))
	assert.Equal(t, 1, vi.InstanceOf(e, 1))
}
