// Package graph provides an index-based undirected weighted graph keyed by
// file path. Nodes are dense integer handles into slices so that merges
// reduce to index-translation tables and per-search state can live in flat
// arrays. Edge weights start as co-occurrence counts and are converted once
// into distances before shortest-path analysis.
package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/papapumpkin/fulcrum/internal/changeset"
)

// ErrNodeNotFound is returned when an operation references a non-existent node.
var ErrNodeNotFound = errors.New("node not found")

// ErrSelfEdge is returned when an edge would connect a node to itself.
var ErrSelfEdge = errors.New("self-referencing edge")

// ErrInvalidWeight is returned for a negative edge weight.
var ErrInvalidWeight = errors.New("invalid weight")

// ErrAlreadyDistance is returned when the distance transform is applied to a
// graph that already holds distances.
var ErrAlreadyDistance = errors.New("graph already holds distances")

// ErrFrozen is returned when mutating a distance graph.
var ErrFrozen = errors.New("graph is frozen")

// NodeID is a dense handle into a Graph's node table. IDs are only
// meaningful for the graph that issued them.
type NodeID int

// Node is the attribute record owned by the graph for one file.
type Node struct {
	Path string
	Kind changeset.Kind
}

// Edge is an undirected weighted edge with U < V.
type Edge struct {
	U, V   NodeID
	Weight int64
}

// Graph is an undirected graph with at most one edge per unordered node pair.
// A Graph is not safe for concurrent mutation; concurrent reads are fine.
type Graph struct {
	nodes []Node
	index map[string]NodeID
	// adj[u][v] is the weight of edge {u, v}; stored in both directions.
	adj      []map[NodeID]int64
	edges    int
	distance bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]NodeID)}
}

// AddNode returns the node for path, creating it if needed. When the node
// already exists its kind is combined with kind via changeset.Combine.
func (g *Graph) AddNode(path string, kind changeset.Kind) NodeID {
	if id, ok := g.index[path]; ok {
		g.nodes[id].Kind = changeset.Combine(g.nodes[id].Kind, kind)
		return id
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{Path: path, Kind: kind})
	g.adj = append(g.adj, nil)
	g.index[path] = id
	return id
}

// Lookup returns the node ID for path.
func (g *Graph) Lookup(path string) (NodeID, bool) {
	id, ok := g.index[path]
	return id, ok
}

// Node returns the attribute record of id. It panics on an out-of-range ID.
func (g *Graph) Node(id NodeID) Node {
	return g.nodes[id]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// IsDistance reports whether edge weights are distances rather than counts.
func (g *Graph) IsDistance() bool {
	return g.distance
}

// Paths returns all node paths sorted alphabetically.
func (g *Graph) Paths() []string {
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.Path
	}
	sort.Strings(out)
	return out
}

// AddWeight adds w to the weight of edge {u, v}, creating the edge with
// weight w if it does not exist. A sum that would overflow int64 is rejected
// with ErrInvalidWeight and leaves the edge unchanged.
func (g *Graph) AddWeight(u, v NodeID, w int64) error {
	if g.distance {
		return ErrFrozen
	}
	if u == v {
		return fmt.Errorf("%w: %d", ErrSelfEdge, u)
	}
	if !g.valid(u) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, u)
	}
	if !g.valid(v) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, v)
	}
	if w < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWeight, w)
	}
	if cur := g.adj[u][v]; cur > math.MaxInt64-w {
		return fmt.Errorf("%w: %d + %d overflows", ErrInvalidWeight, cur, w)
	}
	g.addWeight(u, v, w)
	return nil
}

// addWeight is AddWeight without validation, for callers that already hold
// valid, distinct IDs.
func (g *Graph) addWeight(u, v NodeID, w int64) {
	if g.adj[u] == nil {
		g.adj[u] = make(map[NodeID]int64)
	}
	if g.adj[v] == nil {
		g.adj[v] = make(map[NodeID]int64)
	}
	if _, ok := g.adj[u][v]; !ok {
		g.edges++
	}
	g.adj[u][v] += w
	g.adj[v][u] += w
}

// Weight returns the weight of edge {u, v} and whether it exists.
func (g *Graph) Weight(u, v NodeID) (int64, bool) {
	if !g.valid(u) || !g.valid(v) {
		return 0, false
	}
	w, ok := g.adj[u][v]
	return w, ok
}

// PathWeight returns the weight of the edge between two paths.
func (g *Graph) PathWeight(a, b string) (int64, bool) {
	u, ok := g.index[a]
	if !ok {
		return 0, false
	}
	v, ok := g.index[b]
	if !ok {
		return 0, false
	}
	return g.Weight(u, v)
}

// Degree returns the number of neighbours of id.
func (g *Graph) Degree(id NodeID) int {
	return len(g.adj[id])
}

// Neighbors returns the neighbours of id in ascending ID order.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	out := make([]NodeID, 0, len(g.adj[id]))
	for v := range g.adj[id] {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Edges returns every edge once, ordered by U then V.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for u := range g.adj {
		for v, w := range g.adj[u] {
			if NodeID(u) < v {
				out = append(out, Edge{U: NodeID(u), V: v, Weight: w})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].U != out[j].U {
			return out[i].U < out[j].U
		}
		return out[i].V < out[j].V
	})
	return out
}

// MaxWeight returns the largest edge weight, or 0 for an edgeless graph.
func (g *Graph) MaxWeight() int64 {
	var best int64
	for u := range g.adj {
		for _, w := range g.adj[u] {
			if w > best {
				best = w
			}
		}
	}
	return best
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:    make([]Node, len(g.nodes)),
		index:    make(map[string]NodeID, len(g.index)),
		adj:      make([]map[NodeID]int64, len(g.adj)),
		edges:    g.edges,
		distance: g.distance,
	}
	copy(c.nodes, g.nodes)
	for p, id := range g.index {
		c.index[p] = id
	}
	for u, m := range g.adj {
		if m == nil {
			continue
		}
		cm := make(map[NodeID]int64, len(m))
		for v, w := range m {
			cm[v] = w
		}
		c.adj[u] = cm
	}
	return c
}

// Equal reports whether g and other have the same node paths and kinds and
// the same weight for every path pair. Node enumeration order is ignored.
func (g *Graph) Equal(other *Graph) bool {
	if g.Len() != other.Len() || g.edges != other.edges || g.distance != other.distance {
		return false
	}
	for _, n := range g.nodes {
		id, ok := other.index[n.Path]
		if !ok || other.nodes[id].Kind != n.Kind {
			return false
		}
	}
	for u := range g.adj {
		for v, w := range g.adj[u] {
			ow, ok := other.PathWeight(g.nodes[u].Path, g.nodes[v].Path)
			if !ok || ow != w {
				return false
			}
		}
	}
	return true
}

func (g *Graph) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}
