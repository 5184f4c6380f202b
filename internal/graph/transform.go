package graph

import (
	"fmt"

	"github.com/papapumpkin/fulcrum/internal/changeset"
)

// Without returns a compacted copy of g with every node whose path is in
// paths removed, along with its incident edges. Surviving nodes keep their
// relative order. g is not modified.
func (g *Graph) Without(paths changeset.PathSet) *Graph {
	if paths.Len() == 0 {
		return g.Clone()
	}
	out := New()
	out.distance = g.distance

	translate := make([]NodeID, len(g.nodes))
	for i, n := range g.nodes {
		if paths.Has(n.Path) {
			translate[i] = -1
			continue
		}
		translate[i] = NodeID(len(out.nodes))
		out.nodes = append(out.nodes, n)
		out.adj = append(out.adj, nil)
		out.index[n.Path] = translate[i]
	}

	for u, m := range g.adj {
		nu := translate[u]
		if nu < 0 {
			continue
		}
		for v, w := range m {
			nv := translate[v]
			if nv < 0 || NodeID(u) > v {
				continue
			}
			out.addWeight(nu, nv, w)
		}
	}
	return out
}

// DistanceGraph returns a copy of g whose edge weights are converted from
// co-occurrence counts to distances: distance = max − count, where max is
// the largest count in g. Frequently co-changed pairs therefore end up
// close together. The transform applies exactly once; calling it on a
// distance graph returns ErrAlreadyDistance. The result is frozen.
func (g *Graph) DistanceGraph() (*Graph, error) {
	if g.distance {
		return nil, ErrAlreadyDistance
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	maxCount := g.MaxWeight()
	d := g.Clone()
	for _, m := range d.adj {
		for v, count := range m {
			m[v] = maxCount - count
		}
	}
	d.distance = true
	return d, nil
}

// Validate checks that every edge weight is non-negative.
func (g *Graph) Validate() error {
	for u, m := range g.adj {
		for v, w := range m {
			if w < 0 {
				return fmt.Errorf("%w: edge %s -- %s has weight %d",
					ErrInvalidWeight, g.nodes[u].Path, g.nodes[v].Path, w)
			}
		}
	}
	return nil
}
