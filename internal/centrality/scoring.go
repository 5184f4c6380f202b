package centrality

import "sort"

// ScoringOptions configures composite impact scoring.
type ScoringOptions struct {
	// Alpha is the weight for PageRank in the composite score.
	// The betweenness weight is (1 - Alpha). Must be in [0, 1].
	Alpha float64

	// PageRank holds configuration for the underlying PageRank pass.
	PageRank PageRankOptions
}

// DefaultScoringOptions returns production defaults: alpha 0.6 (slightly
// favor coupling strength over bridging) with standard PageRank settings.
func DefaultScoringOptions() ScoringOptions {
	return ScoringOptions{
		Alpha:    0.6,
		PageRank: DefaultPageRankOptions(),
	}
}

// Impact combines normalized PageRank (coupling strength) and betweenness
// (bridging) into one score per path:
//
//	Impact = alpha * NormalizedPageRank + (1-alpha) * Betweenness
//
// PageRank is normalized to [0, 1] by dividing by its maximum. Paths missing
// from one map contribute 0 for that term.
func Impact(bc, pr map[string]float64, alpha float64) map[string]float64 {
	maxPR := 0.0
	for _, v := range pr {
		if v > maxPR {
			maxPR = v
		}
	}

	out := make(map[string]float64, len(bc))
	for path, v := range bc {
		out[path] = (1 - alpha) * v
	}
	if maxPR == 0 {
		return out
	}
	for path, v := range pr {
		out[path] += alpha * v / maxPR
	}
	return out
}

// Score is one path's value in a ranking.
type Score struct {
	Path  string  `json:"path" toml:"path"`
	Value float64 `json:"value" toml:"value"`
}

// Rank orders scores by value descending, then path ascending.
func Rank(scores map[string]float64) []Score {
	out := make([]Score, 0, len(scores))
	for p, v := range scores {
		out = append(out, Score{Path: p, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Path < out[j].Path
	})
	return out
}
