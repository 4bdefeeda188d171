package chcparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hornverify/hornverify/pkg/graph"
)

func vertexNamed(hg *graph.HyperGraph, name string) (graph.VertexID, bool) {
	for _, v := range hg.Vertices() {
		if hg.Vertex(v).Name == name {
			return v, true
		}
	}

	return 0, false
}

func TestParseLinearCounterProducesSingleLoopShape(t *testing.T) {
	src := `
(declare-rel inv (Int))
(rule (=> (= x 0) (inv x)))
(rule (=> (and (inv x) (= xp (+ x 1))) (inv xp)))
(query (and (inv x) (< x 0)))
`

	hg, err := Parse(src)
	require.NoError(t, err)

	assert.Len(t, hg.Vertices(), 3)
	assert.Len(t, hg.Edges(), 3)
	assert.True(t, hg.IsNormal())

	inv, ok := vertexNamed(hg, "inv")
	require.True(t, ok)
	require.Len(t, hg.Vertex(inv).Args, 1)

	var initEdges, loopEdges, queryEdges int

	for _, e := range hg.Edges() {
		switch {
		case len(e.From) == 1 && e.From[0] == hg.Entry() && e.To == inv:
			initEdges++
		case len(e.From) == 1 && e.From[0] == inv && e.To == inv:
			loopEdges++
		case len(e.From) == 1 && e.From[0] == inv && e.To == hg.Exit():
			queryEdges++
		}
	}

	assert.Equal(t, 1, initEdges)
	assert.Equal(t, 1, loopEdges)
	assert.Equal(t, 1, queryEdges)
}

func TestParseBareFactRuleIsAnEntryEdge(t *testing.T) {
	src := `
(declare-rel p (Int))
(rule (p 0))
`

	hg, err := Parse(src)
	require.NoError(t, err)

	require.Len(t, hg.Edges(), 1)

	e := hg.Edges()[0]
	assert.Equal(t, []graph.VertexID{hg.Entry()}, e.From)
}

func TestParseRejectsUndeclaredRelationInHead(t *testing.T) {
	_, err := Parse(`(rule (=> (= x 0) (inv x)))`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared relation")
}

func TestParseRejectsRepeatedRelationOccurrenceInBody(t *testing.T) {
	src := `
(declare-rel p (Int))
(rule (=> (and (p x) (p y)) (p x)))
`
	_, err := Parse(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than once")
}

func TestParseRejectsUnknownSort(t *testing.T) {
	_, err := Parse(`(declare-rel p (Frob))`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sort")
}

func TestParseRejectsArityMismatch(t *testing.T) {
	src := `
(declare-rel p (Int Int))
(rule (p 1))
`
	_, err := Parse(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2")
}

func TestParseRejectsDuplicateRelationDeclaration(t *testing.T) {
	src := `
(declare-rel p (Int))
(declare-rel p (Int))
`
	_, err := Parse(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared more than once")
}

func TestParseRejectsRelationNestedUnderConnective(t *testing.T) {
	src := `
(declare-rel p (Int))
(rule (=> (and (p x) (not (p x))) (p x)))
`
	_, err := Parse(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not be nested under a connective")
}

func TestParseReportsLineNumberAndTextOfUnbalancedParen(t *testing.T) {
	src := "(declare-rel p (Int))\n(rule (p x)"

	_, err := Parse(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "(rule (p x)")
}
