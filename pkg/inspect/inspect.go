// Package inspect renders a verification verdict's witness for a
// human: a scrollable step/variable table for an InvalidityWitness
// counterexample, or a flat per-predicate dump for a ValidityWitness
// invariant. Grounded on Consensys-go-corset's
// pkg/cmd/inspector.Inspector (Tabs/Table/TextLine widgets driven by a
// termio.Terminal read/update/render loop), scaled down to the single
// scrollable table this domain needs rather than a multi-module trace
// browser.
package inspect

import (
	"fmt"
	"io"
	"sort"

	"github.com/hornverify/hornverify/pkg/term"
	"github.com/hornverify/hornverify/pkg/util/termio"
	"github.com/hornverify/hornverify/pkg/util/termio/widget"
	"github.com/hornverify/hornverify/pkg/witness"
)

// TraceViewer interactively browses an InvalidityWitness: rows are
// unrolling steps 0..Length, columns are state variables in a fixed
// order.
type TraceViewer struct {
	steps []witness.Step
	vars  []term.VarKey

	row uint

	term      *termio.Terminal
	table     *widget.Table
	statusBar *widget.TextLine
}

// NewTraceViewer constructs a viewer over inv's steps. vars fixes the
// column order; pass SortedVars of inv's variable keys for a stable
// default.
func NewTraceViewer(t *termio.Terminal, inv *witness.InvalidityWitness, vars []term.VarKey) *TraceViewer {
	v := &TraceViewer{
		steps:     inv.Steps,
		vars:      vars,
		statusBar: widget.NewText(),
	}

	v.table = widget.NewTable(v)
	v.statusBar.Add(termio.NewColouredText(fmt.Sprintf("counterexample of length %d -- arrows scroll, q quits", inv.Length), termio.TERM_YELLOW))

	t.Add(v.table)
	t.Add(widget.NewSeparator("-"))
	t.Add(v.statusBar)

	v.term = t

	return v
}

// SortedVars returns a copy of vars in a stable, display-friendly
// order (lexical by base name).
func SortedVars(vars []term.VarKey) []term.VarKey {
	out := append([]term.VarKey(nil), vars...)

	sort.Slice(out, func(i, j int) bool { return out[i].Base < out[j].Base })

	return out
}

// ColumnWidth implements widget.TableSource. Column 0 is the step
// index; each subsequent column is one variable.
func (v *TraceViewer) ColumnWidth(col uint) uint {
	if col == 0 {
		return 6
	}

	idx := int(col) - 1
	if idx >= len(v.vars) {
		return 0
	}

	return uint(len(v.vars[idx].Base)) + 2
}

// CellAt implements widget.TableSource.
func (v *TraceViewer) CellAt(col, row uint) termio.FormattedText {
	if row == 0 {
		if col == 0 {
			return termio.NewColouredText("step", termio.TERM_BLUE)
		}

		idx := int(col) - 1
		if idx >= len(v.vars) {
			return termio.NewText("")
		}

		return termio.NewColouredText(v.vars[idx].Base, termio.TERM_BLUE)
	}

	step := int(row-1) + int(v.row)
	if step >= len(v.steps) {
		return termio.NewText("")
	}

	if col == 0 {
		return termio.NewColouredText(fmt.Sprintf("%d", step), termio.TERM_BLUE)
	}

	idx := int(col) - 1
	if idx >= len(v.vars) {
		return termio.NewText("")
	}

	val, ok := v.steps[step].Values[v.vars[idx]]
	if !ok {
		return termio.NewText("?")
	}

	return termio.NewText(fmt.Sprintf("%d", val))
}

// Run drives the read / render loop until the user quits. It restores
// the terminal's original state before returning.
func (v *TraceViewer) Run() error {
	defer v.term.Restore() //nolint:errcheck

	if err := v.term.Render(); err != nil {
		return err
	}

	for {
		key, err := v.term.ReadKey()
		if err != nil {
			return err
		}

		switch key {
		case 'q':
			return nil
		case termio.CURSOR_DOWN:
			if int(v.row)+1 < len(v.steps) {
				v.row++
			}
		case termio.CURSOR_UP:
			if v.row > 0 {
				v.row--
			}
		}

		if err := v.term.Render(); err != nil {
			return err
		}
	}
}

// FormatInvalidityWitness writes inv as a plain-text table, for
// non-interactive output (piped stdout, log files).
func FormatInvalidityWitness(w io.Writer, inv *witness.InvalidityWitness, vars []term.VarKey) error {
	width := uint(1 + len(vars))
	height := uint(1 + len(inv.Steps))
	table := termio.NewTablePrinter(width, height)
	table.AnsiEscapes(false)

	header := make([]string, width)
	header[0] = "step"

	for i, v := range vars {
		header[i+1] = v.Base
	}

	table.SetRow(0, header...)

	for i, step := range inv.Steps {
		row := make([]string, width)
		row[0] = fmt.Sprintf("%d", i)

		for j, v := range vars {
			if val, ok := step.Values[v]; ok {
				row[j+1] = fmt.Sprintf("%d", val)
			} else {
				row[j+1] = "?"
			}
		}

		table.SetRow(uint(i+1), row...)
	}

	return table.Fprint(w)
}

// FormatValidityWitness writes one line per predicate, naming its
// 1-inductive invariant. A predicate with no recorded invariant (a
// vertex the rewriter contracted away without a translated witness)
// is omitted by the caller before this is reached.
func FormatValidityWitness(w io.Writer, store *term.Store, valid *witness.ValidityWitness) error {
	names := make([]string, 0, len(valid.Invariant))
	for name := range valid.Invariant {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s: %s\n", name, store.String(valid.Invariant[name])); err != nil {
			return err
		}
	}

	return nil
}
