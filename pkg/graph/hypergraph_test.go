package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hornverify/hornverify/pkg/term"
)

// TestWriteHyperDotLabelsRepeatedSourceInstances exercises
// VertexInstances/InstanceOf through WriteHyperDot on a genuinely
// non-linear hyperedge (the same predicate appearing twice as a
// source), the one place in this module that consumes them.
func TestWriteHyperDotLabelsRepeatedSourceInstances(t *testing.T) {
	store := term.NewStore()
	hg := NewHyperGraph(store)

	p := hg.AddVertex("p", []Arg{{Name: "p!0", Sort: term.Int}})
	hg.AddEdge([]VertexID{p, p}, hg.Exit(), store.True())

	var buf strings.Builder
	require.NoError(t, WriteHyperDot(&buf, hg))

	out := buf.String()
	assert.Contains(t, out, `label="#0"`)
	assert.Contains(t, out, `label="#1"`)
}

func TestWriteHyperDotRendersSingleSourceEdgePlain(t *testing.T) {
	store := term.NewStore()
	hg := NewHyperGraph(store)

	p := hg.AddVertex("p", []Arg{{Name: "p!0", Sort: term.Int}})
	hg.AddEdge([]VertexID{hg.Entry()}, p, store.True())

	var buf strings.Builder
	require.NoError(t, WriteHyperDot(&buf, hg))

	assert.Contains(t, buf.String(), "->")
	assert.NotContains(t, buf.String(), "_join")
}
