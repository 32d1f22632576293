package report

import (
	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"

	"wcstack/internal/callgraph"
)

// DOT renders the resolved call graph as Graphviz DOT. Each function is a
// node; each resolved call edge becomes a graph edge. Unresolved targets
// are omitted, matching the table's unresolved-dependency column.
func DOT(g *callgraph.Graph, title string) string {
	lg := &lattice.Graph{}
	for _, f := range g.Funcs() {
		lg.Nodes = append(lg.Nodes, f.Label())
		for _, h := range f.Callees {
			lg.Edges = append(lg.Edges, lattice.Edge{
				Caller: f.Label(),
				Callee: g.Func(h).Label(),
			})
		}
	}
	lg.Dedup()
	return render.DOT(lg, title)
}
