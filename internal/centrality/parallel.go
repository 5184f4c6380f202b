package centrality

import (
	"runtime"

	"github.com/sourcegraph/conc/iter"

	"github.com/papapumpkin/fulcrum/internal/graph"
)

// chunksPerWorker oversplits the sources so uneven components do not leave
// workers idle.
const chunksPerWorker = 4

// sourceRange is a contiguous block of source vertices [lo, hi).
type sourceRange struct {
	lo, hi int32
}

// BetweennessParallel computes the same scores as Betweenness with sources
// split across up to workers goroutines. Each block of sources accumulates
// into its own vector; the vectors are summed in block order once all
// searches finish. A panic in any search is re-raised in the caller.
// workers <= 0 means GOMAXPROCS.
func BetweennessParallel(g *graph.Graph, workers int) (map[string]float64, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 {
		return Betweenness(g)
	}

	c, err := snapshot(g)
	if err != nil {
		return nil, err
	}
	n := c.len()
	if n < 2 {
		return map[string]float64{}, nil
	}

	blocks := splitSources(n, workers*chunksPerWorker)
	mapper := iter.Mapper[sourceRange, []float64]{MaxGoroutines: workers}
	partials := mapper.Map(blocks, func(r *sourceRange) []float64 {
		cb := make([]float64, n)
		a := newArena(n)
		for s := r.lo; s < r.hi; s++ {
			a.search(c, s)
			a.accumulate(s, cb)
			a.reset()
		}
		return cb
	})

	total := make([]float64, n)
	for _, p := range partials {
		for i, v := range p {
			total[i] += v
		}
	}
	return c.scores(total, scale(n)), nil
}

// splitSources divides n sources into at most k contiguous blocks.
func splitSources(n, k int) []sourceRange {
	if k > n {
		k = n
	}
	if k < 1 {
		k = 1
	}
	out := make([]sourceRange, 0, k)
	size, rem := n/k, n%k
	lo := 0
	for i := 0; i < k; i++ {
		hi := lo + size
		if i < rem {
			hi++
		}
		out = append(out, sourceRange{lo: int32(lo), hi: int32(hi)})
		lo = hi
	}
	return out
}
