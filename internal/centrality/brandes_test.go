package centrality

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/papapumpkin/fulcrum/internal/changeset"
	"github.com/papapumpkin/fulcrum/internal/graph"
)

// --- Test fixtures ---

type wedge struct {
	a, b string
	w    int64
}

// build creates a graph from weighted edges. Extra isolated nodes may be
// listed in lonely.
func build(t *testing.T, edges []wedge, lonely ...string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, e := range edges {
		a := g.AddNode(e.a, changeset.Modified)
		b := g.AddNode(e.b, changeset.Modified)
		if err := g.AddWeight(a, b, e.w); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range lonely {
		g.AddNode(p, changeset.Modified)
	}
	return g
}

// mesh is a deterministic pseudo-random weighted graph over n nodes.
func mesh(t *testing.T, n int) *graph.Graph {
	t.Helper()
	var edges []wedge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if (i*31+j*17)%5 != 0 {
				continue
			}
			edges = append(edges, wedge{
				a: fmt.Sprintf("f%03d.go", i),
				b: fmt.Sprintf("f%03d.go", j),
				w: int64((i*7+j*3)%4 + 1),
			})
		}
	}
	return build(t, edges, "island.go")
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func assertScores(t *testing.T, got, want map[string]float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d scores, want %d: %v", len(got), len(want), got)
	}
	for p, w := range want {
		if g, ok := got[p]; !ok || !approx(g, w) {
			t.Errorf("score[%s] = %v, want %v", p, g, w)
		}
	}
}

func TestBetweennessKnownGraphs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		edges  []wedge
		lonely []string
		want   map[string]float64
	}{
		{
			name:  "complete graph",
			edges: []wedge{{"a", "b", 1}, {"a", "c", 1}, {"a", "d", 1}, {"b", "c", 1}, {"b", "d", 1}, {"c", "d", 1}},
			want:  map[string]float64{"a": 0, "b": 0, "c": 0, "d": 0},
		},
		{
			name:  "path",
			edges: []wedge{{"a", "b", 1}, {"b", "c", 1}, {"c", "d", 1}},
			want:  map[string]float64{"a": 0, "b": 2.0 / 3, "c": 2.0 / 3, "d": 0},
		},
		{
			name:  "weighted detour",
			edges: []wedge{{"a", "b", 1}, {"b", "c", 1}, {"a", "c", 5}},
			want:  map[string]float64{"a": 0, "b": 1, "c": 0},
		},
		{
			name:  "equal paths split",
			edges: []wedge{{"a", "b", 1}, {"a", "c", 1}, {"b", "d", 1}, {"c", "d", 1}},
			want:  map[string]float64{"a": 1.0 / 6, "b": 1.0 / 6, "c": 1.0 / 6, "d": 1.0 / 6},
		},
		{
			name:   "isolated and disconnected",
			edges:  []wedge{{"a", "b", 2}, {"b", "c", 2}, {"x", "y", 1}},
			lonely: []string{"z"},
			// Only a->c and c->a pass through b; normalized by 5*4.
			want: map[string]float64{"a": 0, "b": 2.0 / 20, "c": 0, "x": 0, "y": 0, "z": 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Betweenness(build(t, tt.edges, tt.lonely...))
			if err != nil {
				t.Fatalf("Betweenness: %v", err)
			}
			assertScores(t, got, tt.want)
		})
	}
}

func TestBetweennessSmallGraphs(t *testing.T) {
	t.Parallel()

	empty, err := Betweenness(graph.New())
	if err != nil || len(empty) != 0 {
		t.Errorf("empty graph = %v, %v; want empty map", empty, err)
	}

	one, err := Betweenness(build(t, nil, "solo"))
	if err != nil || len(one) != 0 {
		t.Errorf("single node = %v, %v; want empty map", one, err)
	}

	two, err := Betweenness(build(t, []wedge{{"a", "b", 3}}))
	if err != nil {
		t.Fatal(err)
	}
	assertScores(t, two, map[string]float64{"a": 0, "b": 0})
}

func TestBetweennessIndependentOfInsertionOrder(t *testing.T) {
	t.Parallel()

	// Zero-weight edges make tie order observable; path ordering must make
	// the result stable anyway.
	edges := []wedge{
		{"a", "b", 0}, {"b", "c", 0}, {"a", "c", 0},
		{"c", "d", 2}, {"d", "e", 1}, {"b", "e", 3},
	}
	reversed := make([]wedge, len(edges))
	for i, e := range edges {
		reversed[len(edges)-1-i] = wedge{e.b, e.a, e.w}
	}

	fwd, err := Betweenness(build(t, edges))
	if err != nil {
		t.Fatal(err)
	}
	rev, err := Betweenness(build(t, reversed))
	if err != nil {
		t.Fatal(err)
	}
	for p, v := range fwd {
		if rev[p] != v {
			t.Errorf("score[%s] = %v forward, %v reversed", p, v, rev[p])
		}
	}
}

func TestBetweennessParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	g := mesh(t, 60)
	want, err := Betweenness(g)
	if err != nil {
		t.Fatal(err)
	}

	for _, workers := range []int{0, 1, 2, 3, 8, 1000} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			t.Parallel()
			got, err := BetweennessParallel(g, workers)
			if err != nil {
				t.Fatalf("BetweennessParallel: %v", err)
			}
			assertScores(t, got, want)
		})
	}
}

func TestBetweennessOnDistanceGraph(t *testing.T) {
	t.Parallel()

	// Counts: a-b 3, b-c 3, a-c 1. Distances: 0, 0, 2. Every shortest
	// a-c path goes through b.
	counts := build(t, []wedge{{"a", "b", 3}, {"b", "c", 3}, {"a", "c", 1}})
	dist, err := counts.DistanceGraph()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Betweenness(dist)
	if err != nil {
		t.Fatal(err)
	}
	assertScores(t, got, map[string]float64{"a": 0, "b": 1, "c": 0})
}

func TestBetweennessRejectsNegativeWeight(t *testing.T) {
	t.Parallel()

	// Merge sums unchecked, so two maximal a -- b weights wrap negative.
	half := func() *graph.Graph {
		return build(t, []wedge{{"a", "b", math.MaxInt64}, {"b", "c", 1}})
	}
	g := graph.Merge(half(), half())
	if w, _ := g.PathWeight("a", "b"); w >= 0 {
		t.Fatalf("weight(a, b) = %d, want a wrapped negative", w)
	}

	tests := []struct {
		name string
		run  func(*graph.Graph) (map[string]float64, error)
	}{
		{"sequential", Betweenness},
		{"parallel", func(g *graph.Graph) (map[string]float64, error) { return BetweennessParallel(g, 4) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.run(g)
			if !errors.Is(err, graph.ErrInvalidWeight) {
				t.Errorf("err = %v, want ErrInvalidWeight", err)
			}
			if got != nil {
				t.Errorf("scores = %v, want nil", got)
			}
		})
	}
}

func TestSplitSources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, k int
		want int
	}{
		{10, 3, 3},
		{2, 8, 2},
		{5, 0, 1},
	}
	for _, tt := range tests {
		blocks := splitSources(tt.n, tt.k)
		if len(blocks) != tt.want {
			t.Errorf("splitSources(%d, %d) gave %d blocks, want %d", tt.n, tt.k, len(blocks), tt.want)
		}
		covered := 0
		for i, b := range blocks {
			if i > 0 && b.lo != blocks[i-1].hi {
				t.Errorf("block %d starts at %d, previous ended at %d", i, b.lo, blocks[i-1].hi)
			}
			covered += int(b.hi - b.lo)
		}
		if covered != tt.n {
			t.Errorf("splitSources(%d, %d) covers %d sources", tt.n, tt.k, covered)
		}
	}
}
