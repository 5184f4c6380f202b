package graph

import "sort"

// UnionFind implements a disjoint-set structure over dense node IDs with path
// compression and union by rank.
type UnionFind struct {
	parent []int
	rank   []int
}

// NewUnionFind creates a UnionFind with n singleton sets {0}..{n-1}.
func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

// Find returns the representative of the set containing x.
func (uf *UnionFind) Find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y.
func (uf *UnionFind) Union(x, y int) {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return
	}
	// Attach the shorter tree under the taller one.
	switch {
	case uf.rank[rx] < uf.rank[ry]:
		uf.parent[rx] = ry
	case uf.rank[rx] > uf.rank[ry]:
		uf.parent[ry] = rx
	default:
		uf.parent[ry] = rx
		uf.rank[rx]++
	}
}

// Components partitions the graph into connected components. Each component
// lists its paths alphabetically; components are ordered by size descending,
// then by first path.
func (g *Graph) Components() [][]string {
	uf := NewUnionFind(g.Len())
	for u, m := range g.adj {
		for v := range m {
			uf.Union(u, int(v))
		}
	}

	groups := make(map[int][]string)
	for i, n := range g.nodes {
		root := uf.Find(i)
		groups[root] = append(groups[root], n.Path)
	}

	out := make([][]string, 0, len(groups))
	for _, members := range groups {
		sort.Strings(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out
}
