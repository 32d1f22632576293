// Package report renders the analysis results: the per-function usage
// table, the budget verdict, and a DOT export of the resolved call graph.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"wcstack/internal/callgraph"
)

// Row is one line of the usage table.
type Row struct {
	Unit       string
	Name       string
	Usage      string
	Unresolved string
}

// Rows builds the table rows, sorted worst first: unbounded results ahead
// of bounded ones, bounded descending by bytes, name as tie-break so the
// listing is deterministic.
func Rows(g *callgraph.Graph) []Row {
	funcs := append([]*callgraph.Function(nil), g.Funcs()...)
	sort.Slice(funcs, func(i, j int) bool {
		ri, rj := funcs[i].Result(), funcs[j].Result()
		if ri.IsUnbounded() != rj.IsUnbounded() {
			return ri.IsUnbounded()
		}
		if ri.Bytes() != rj.Bytes() {
			return ri.Bytes() > rj.Bytes()
		}
		return funcs[i].Label() < funcs[j].Label()
	})

	rows := make([]Row, 0, len(funcs))
	for _, f := range funcs {
		rows = append(rows, Row{
			Unit:       f.Unit,
			Name:       f.Label(),
			Usage:      usage(f),
			Unresolved: unresolved(f),
		})
	}
	return rows
}

// usage renders a function's result: "unbounded" when no static bound
// exists, "unbounded:<n>" when the bound is conditional on unresolved call
// targets, a plain byte count otherwise.
func usage(f *callgraph.Function) string {
	r := f.Result()
	if r.IsUnbounded() {
		return "unbounded"
	}
	if len(f.Unresolved()) > 0 {
		return fmt.Sprintf("unbounded:%d", r.Bytes())
	}
	return r.String()
}

func unresolved(f *callgraph.Function) string {
	deps := f.Unresolved()
	if len(deps) == 0 {
		return ""
	}
	return "(" + strings.Join(deps, ", ") + ")"
}

const (
	minUnitWidth = 16
	minNameWidth = 13
)

// Table writes the full usage table.
func Table(w io.Writer, g *callgraph.Graph) error {
	rows := Rows(g)

	unitWidth, nameWidth := minUnitWidth, minNameWidth
	for _, r := range rows {
		if len(r.Unit) > unitWidth {
			unitWidth = len(r.Unit)
		}
		if len(r.Name) > nameWidth {
			nameWidth = len(r.Name)
		}
	}

	format := fmt.Sprintf("%%-%ds  %%-%ds  %%14s  %%s\n", unitWidth+2, nameWidth+2)
	if _, err := fmt.Fprintf(w, format, "Translation Unit", "Function Name", "Stack", "Unresolved Dependencies"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, format, r.Unit, r.Name, r.Usage, r.Unresolved); err != nil {
			return err
		}
	}
	return nil
}

// BudgetLines renders the pass/fail verdict.
func BudgetLines(b callgraph.Budget) []string {
	if b.Unbounded {
		lines := []string{"Stack usage cannot be bounded statically."}
		if b.WorstFuncRes.IsUnbounded() {
			lines = append(lines, fmt.Sprintf("Function %s has no static stack bound", b.WorstFunc))
		}
		if b.WorstIRQRes.IsUnbounded() {
			lines = append(lines, fmt.Sprintf("Interrupt handler %s has no static stack bound", b.WorstIRQ))
		}
		return lines
	}
	if !b.OK {
		lines := []string{
			fmt.Sprintf("Stack size is too small. Required: %d, Provided: %d", b.Required, b.Limit),
		}
		if b.WorstIRQ != "" {
			lines = append(lines, fmt.Sprintf("If %s fires while in %s, the stack will overflow", b.WorstIRQ, b.WorstFunc))
		}
		return lines
	}
	return []string{
		fmt.Sprintf("Worst case stack usage is %d bytes. Stack size is %d bytes", b.Required, b.Limit),
	}
}
