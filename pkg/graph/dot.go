package graph

import (
	"fmt"
	"io"
)

// WriteDot renders g in Graphviz dot format, grounded on
// original_source/src/graph/ChcGraph.cc's ChcDirectedGraph::toDot. The
// entry and exit vertices are drawn as doublecircle nodes.
func WriteDot(w io.Writer, g *Graph) error {
	if _, err := fmt.Fprintln(w, "digraph CHC {"); err != nil {
		return err
	}

	for _, id := range g.Vertices() {
		v := g.Vertex(id)
		shape := "ellipse"

		if id == g.Entry() || id == g.Exit() {
			shape = "doublecircle"
		}

		if _, err := fmt.Fprintf(w, "  v%d [label=%q, shape=%s];\n", id, v.Name, shape); err != nil {
			return err
		}
	}

	for _, e := range g.Edges() {
		label := g.store.String(e.Label)
		if _, err := fmt.Fprintf(w, "  v%d -> v%d [label=%q];\n", e.From, e.To, label); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "}")

	return err
}

// WriteHyperDot renders hg in Graphviz dot format. A hyperedge with
// more than one source is drawn as an intermediate junction node
// (shape=point) fed by each source, matching how Golem visualises
// non-normal CHC graphs in practice.
func WriteHyperDot(w io.Writer, hg *HyperGraph) error {
	if _, err := fmt.Fprintln(w, "digraph CHC {"); err != nil {
		return err
	}

	for _, id := range hg.Vertices() {
		v := hg.Vertex(id)
		shape := "ellipse"

		if id == hg.Entry() || id == hg.Exit() {
			shape = "doublecircle"
		}

		if _, err := fmt.Fprintf(w, "  v%d [label=%q, shape=%s];\n", id, v.Name, shape); err != nil {
			return err
		}
	}

	instances := NewVertexInstances(hg)

	for _, e := range hg.Edges() {
		label := hg.store.String(e.Label)

		if len(e.From) == 1 {
			if _, err := fmt.Fprintf(w, "  v%d -> v%d [label=%q];\n", e.From[0], e.To, label); err != nil {
				return err
			}

			continue
		}

		junction := fmt.Sprintf("e%d_join", e.ID)

		if _, err := fmt.Fprintf(w, "  %s [shape=point];\n", junction); err != nil {
			return err
		}

		// Two sources of the same hyperedge can be the same predicate
		// (a non-linear clause recurring on itself); instances tells
		// them apart so the rendering doesn't silently collapse
		// distinct occurrences into one arrow (spec.md §3 "different
		// instance indices").
		for i, src := range e.From {
			if _, err := fmt.Fprintf(w, "  v%d -> %s [label=\"#%d\"];\n", src, junction, instances.InstanceOf(e.ID, i)); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, "  %s -> v%d [label=%q];\n", junction, e.To, label); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "}")

	return err
}
