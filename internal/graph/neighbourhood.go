package graph

import (
	"fmt"
	"sort"
)

// Neighbourhood returns the nodes reachable from path in at most depth hops,
// including the node itself, sorted by ID. A depth of 0 yields just the node.
func (g *Graph) Neighbourhood(path string, depth int) ([]NodeID, error) {
	start, ok := g.index[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
	}

	seen := map[NodeID]bool{start: true}
	frontier := []NodeID{start}
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []NodeID
		for _, u := range frontier {
			for v := range g.adj[u] {
				if !seen[v] {
					seen[v] = true
					next = append(next, v)
				}
			}
		}
		frontier = next
	}

	out := make([]NodeID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Induced returns the subgraph of g containing only the given nodes and the
// edges between them. Weights and the distance flag are preserved.
func (g *Graph) Induced(ids []NodeID) *Graph {
	out := New()
	out.distance = g.distance
	translate := make(map[NodeID]NodeID, len(ids))
	for _, id := range ids {
		n := g.nodes[id]
		translate[id] = out.AddNode(n.Path, n.Kind)
	}
	for _, u := range ids {
		for v, w := range g.adj[u] {
			nv, ok := translate[v]
			if !ok || u > v {
				continue
			}
			out.addWeight(translate[u], nv, w)
		}
	}
	return out
}
