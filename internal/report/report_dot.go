package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/papapumpkin/fulcrum/internal/graph"
)

// DOTReport renders the whole graph in Graphviz DOT. Node labels carry the
// betweenness score when one is known.
type DOTReport struct{}

// Render produces an undirected DOT graph.
func (r *DOTReport) Render(in *Input) (string, error) {
	if err := checkInput(in); err != nil {
		return "", err
	}
	if in.Graph == nil {
		return "", fmt.Errorf("dot report needs a graph")
	}
	scores := make(map[string]float64, len(in.Scores))
	for _, s := range in.Scores {
		scores[s.Path] = s.Value
	}
	return writeDOT(in.Graph, scores), nil
}

// Neighbourhood renders the subgraph within depth hops of path in DOT.
func Neighbourhood(g *graph.Graph, path string, depth int) (string, error) {
	ids, err := g.Neighbourhood(path, depth)
	if err != nil {
		return "", fmt.Errorf("neighbourhood of %s: %w", path, err)
	}
	return writeDOT(g.Induced(ids), nil), nil
}

func writeDOT(g *graph.Graph, scores map[string]float64) string {
	var b strings.Builder
	b.WriteString("graph cochange {\n")
	for _, p := range g.Paths() {
		if v, ok := scores[p]; ok {
			fmt.Fprintf(&b, "  %s [label=%s];\n", strconv.Quote(p), strconv.Quote(fmt.Sprintf("%s\n%.4f", p, v)))
			continue
		}
		fmt.Fprintf(&b, "  %s;\n", strconv.Quote(p))
	}
	type line struct {
		a, c string
		w    int64
	}
	lines := make([]line, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		a, c := g.Node(e.U).Path, g.Node(e.V).Path
		if a > c {
			a, c = c, a
		}
		lines = append(lines, line{a, c, e.Weight})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].a != lines[j].a {
			return lines[i].a < lines[j].a
		}
		return lines[i].c < lines[j].c
	})
	for _, l := range lines {
		fmt.Fprintf(&b, "  %s -- %s [weight=%d];\n", strconv.Quote(l.a), strconv.Quote(l.c), l.w)
	}
	b.WriteString("}\n")
	return b.String()
}
