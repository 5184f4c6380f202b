// Package centrality computes node centrality scores over co-change graphs:
// weighted betweenness (Brandes with Dijkstra), weighted PageRank and a
// composite impact score combining the two.
package centrality

import (
	"container/heap"

	"github.com/papapumpkin/fulcrum/internal/graph"
)

// Betweenness computes normalized weighted betweenness centrality for every
// node of g using Brandes' algorithm, one source at a time. Edge weights are
// read as distances. Graphs with fewer than two nodes yield an empty map.
//
// Scores are normalized by 1/((n-1)(n-2)) when n > 2. A node's score sums,
// over all ordered source/target pairs, the fraction of shortest paths that
// pass through it.
func Betweenness(g *graph.Graph) (map[string]float64, error) {
	c, err := snapshot(g)
	if err != nil {
		return nil, err
	}
	n := c.len()
	if n < 2 {
		return map[string]float64{}, nil
	}

	cb := make([]float64, n)
	a := newArena(n)
	for s := 0; s < n; s++ {
		a.search(c, int32(s))
		a.accumulate(int32(s), cb)
		a.reset()
	}
	return c.scores(cb, scale(n)), nil
}

// scale returns the normalization factor for n nodes.
func scale(n int) float64 {
	if n <= 2 {
		return 1
	}
	return 1 / float64((n-1)*(n-2))
}

// arena holds the per-source search state. Slices are indexed by CSR vertex
// and restored to their initial values by reset, so one arena serves many
// sources without reallocating.
type arena struct {
	dist     []int64 // -1 until discovered
	sigma    []float64
	delta    []float64
	pred     [][]int32
	done     []bool
	stack    []int32 // vertices in finalization order
	frontier frontier
}

func newArena(n int) *arena {
	a := &arena{
		dist:  make([]int64, n),
		sigma: make([]float64, n),
		delta: make([]float64, n),
		pred:  make([][]int32, n),
		done:  make([]bool, n),
		stack: make([]int32, 0, n),
	}
	for i := range a.dist {
		a.dist[i] = -1
	}
	return a
}

// search runs Dijkstra from s, counting shortest paths. A strictly shorter
// candidate replaces the predecessor list and defers sigma until the vertex
// is popped; an equally short candidate adds to sigma immediately. Vertices
// are finalized on pop and never relaxed again.
func (a *arena) search(c *csr, s int32) {
	a.dist[s] = 0
	a.sigma[s] = 1
	heap.Push(&a.frontier, entry{dist: 0, vertex: s, pred: s})

	for a.frontier.Len() > 0 {
		e := heap.Pop(&a.frontier).(entry)
		v := e.vertex
		if a.done[v] {
			continue
		}
		a.done[v] = true
		if v != s {
			a.sigma[v] += a.sigma[e.pred]
		}
		a.stack = append(a.stack, v)

		for i := c.offsets[v]; i < c.offsets[v+1]; i++ {
			w := c.targets[i]
			if a.done[w] {
				continue
			}
			d := e.dist + c.weights[i]
			switch {
			case a.dist[w] < 0 || d < a.dist[w]:
				a.dist[w] = d
				a.sigma[w] = 0
				a.pred[w] = append(a.pred[w][:0], v)
				heap.Push(&a.frontier, entry{dist: d, vertex: w, pred: v})
			case d == a.dist[w]:
				a.sigma[w] += a.sigma[v]
				a.pred[w] = append(a.pred[w], v)
			}
		}
	}
}

// accumulate back-propagates dependencies in reverse finalization order and
// adds them to cb.
func (a *arena) accumulate(s int32, cb []float64) {
	for i := len(a.stack) - 1; i >= 0; i-- {
		w := a.stack[i]
		coeff := (1 + a.delta[w]) / a.sigma[w]
		for _, v := range a.pred[w] {
			a.delta[v] += a.sigma[v] * coeff
		}
		if w != s {
			cb[w] += a.delta[w]
		}
	}
}

// reset restores every vertex touched by the last search.
func (a *arena) reset() {
	for _, v := range a.stack {
		a.dist[v] = -1
		a.sigma[v] = 0
		a.delta[v] = 0
		a.pred[v] = a.pred[v][:0]
		a.done[v] = false
	}
	a.stack = a.stack[:0]
	a.frontier = a.frontier[:0]
}

// entry is a frontier item. Ties on distance break on vertex index, which is
// path order.
type entry struct {
	dist   int64
	vertex int32
	pred   int32
}

// frontier is a binary min-heap of entries.
type frontier []entry

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].dist != f[j].dist {
		return f[i].dist < f[j].dist
	}
	if f[i].vertex != f[j].vertex {
		return f[i].vertex < f[j].vertex
	}
	return f[i].pred < f[j].pred
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(entry)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	e := old[n-1]
	*f = old[:n-1]
	return e
}
