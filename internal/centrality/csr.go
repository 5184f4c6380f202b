package centrality

import (
	"fmt"
	"sort"

	"github.com/papapumpkin/fulcrum/internal/graph"
)

// csr is a read-only compressed-sparse-row view of a graph. Vertices are
// renumbered in path order, so vertex index comparisons are path
// comparisons and results do not depend on the source graph's NodeIDs.
type csr struct {
	paths   []string
	offsets []int
	targets []int32
	weights []int64
}

// snapshot builds the CSR view of g. It fails with graph.ErrInvalidWeight
// when any edge weight is negative.
func snapshot(g *graph.Graph) (*csr, error) {
	n := g.Len()
	order := make([]graph.NodeID, n)
	for i := range order {
		order[i] = graph.NodeID(i)
	}
	sort.Slice(order, func(i, j int) bool {
		return g.Node(order[i]).Path < g.Node(order[j]).Path
	})
	pos := make([]int32, n)
	for i, id := range order {
		pos[id] = int32(i)
	}

	c := &csr{
		paths:   make([]string, n),
		offsets: make([]int, n+1),
		targets: make([]int32, 0, 2*g.EdgeCount()),
		weights: make([]int64, 0, 2*g.EdgeCount()),
	}
	for i, id := range order {
		c.paths[i] = g.Node(id).Path
		nbs := g.Neighbors(id)
		sort.Slice(nbs, func(a, b int) bool { return pos[nbs[a]] < pos[nbs[b]] })
		for _, nb := range nbs {
			w, _ := g.Weight(id, nb)
			if w < 0 {
				return nil, fmt.Errorf("%w: %d on edge %s -- %s",
					graph.ErrInvalidWeight, w, g.Node(id).Path, g.Node(nb).Path)
			}
			c.targets = append(c.targets, pos[nb])
			c.weights = append(c.weights, w)
		}
		c.offsets[i+1] = len(c.targets)
	}
	return c, nil
}

func (c *csr) len() int {
	return len(c.paths)
}

// scores maps per-vertex values back to paths, multiplied by scale.
func (c *csr) scores(vals []float64, scale float64) map[string]float64 {
	out := make(map[string]float64, len(vals))
	for i, v := range vals {
		out[c.paths[i]] = v * scale
	}
	return out
}
