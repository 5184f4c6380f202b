package centrality

import (
	"math"

	"github.com/papapumpkin/fulcrum/internal/graph"
)

// PageRankOptions configures the iterative PageRank algorithm.
type PageRankOptions struct {
	Damping       float64 // damping factor; typically 0.85
	Epsilon       float64 // convergence threshold
	MaxIterations int     // upper bound on iterations
}

// DefaultPageRankOptions returns production-ready defaults:
// damping 0.85, epsilon 1e-6, max 100 iterations.
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		Damping:       0.85,
		Epsilon:       1e-6,
		MaxIterations: 100,
	}
}

// PageRank computes weighted PageRank over a co-change count graph. Each
// node spreads its rank to its neighbours in proportion to the shared change
// count, so files that change together with many frequently changed files
// score higher.
//
// Isolated nodes redistribute their rank uniformly, following the standard
// dangling-node treatment. Scores sum to approximately 1.0.
func PageRank(g *graph.Graph, opts PageRankOptions) (map[string]float64, error) {
	c, err := snapshot(g)
	if err != nil {
		return nil, err
	}
	n := c.len()
	if n == 0 {
		return map[string]float64{}, nil
	}

	// strength[u] is the total weight of u's edges.
	strength := make([]float64, n)
	for u := 0; u < n; u++ {
		for i := c.offsets[u]; i < c.offsets[u+1]; i++ {
			strength[u] += float64(c.weights[i])
		}
	}

	nf := float64(n)
	base := (1.0 - opts.Damping) / nf
	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / nf
	}
	next := make([]float64, n)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		var danglingSum float64
		for u := 0; u < n; u++ {
			if strength[u] == 0 {
				danglingSum += rank[u]
			}
		}
		danglingShare := opts.Damping * danglingSum / nf

		for v := 0; v < n; v++ {
			var sum float64
			for i := c.offsets[v]; i < c.offsets[v+1]; i++ {
				u := c.targets[i]
				if strength[u] > 0 {
					sum += rank[u] * float64(c.weights[i]) / strength[u]
				}
			}
			next[v] = base + opts.Damping*sum + danglingShare
		}

		maxDelta := 0.0
		for i := range rank {
			maxDelta = math.Max(maxDelta, math.Abs(next[i]-rank[i]))
		}
		rank, next = next, rank
		if maxDelta < opts.Epsilon {
			break
		}
	}

	return c.scores(rank, 1), nil
}
