// Package report renders centrality results and co-change graphs as CSV,
// markdown, JSON, TOML or Graphviz DOT.
package report

import (
	"fmt"

	"github.com/papapumpkin/fulcrum/internal/centrality"
	"github.com/papapumpkin/fulcrum/internal/graph"
)

// Input is everything a report may draw on.
type Input struct {
	// Graph is the co-change graph, weighted by counts or by distances.
	Graph *graph.Graph

	// Scores is the betweenness ranking, highest first.
	Scores []centrality.Score

	// Impact holds the composite score per path. It may be nil.
	Impact map[string]float64

	// Top limits ranked output to the first Top rows. Zero means all.
	Top int
}

// Format defines how an analysis result is rendered into a human- or
// machine-readable string.
type Format interface {
	// Render produces the full report content.
	Render(in *Input) (string, error)
}

// FormatByName returns the Format implementation for the given name.
// Supported names: csv, table, json, toml, dot.
func FormatByName(name string) (Format, error) {
	switch name {
	case "csv":
		return &CSVReport{}, nil
	case "table":
		return &TableReport{}, nil
	case "json":
		return &JSONReport{}, nil
	case "toml":
		return &TOMLReport{}, nil
	case "dot":
		return &DOTReport{}, nil
	default:
		return nil, fmt.Errorf("unknown report format: %q", name)
	}
}

// FormatNames returns the list of all supported report format names.
func FormatNames() []string {
	return []string{"csv", "table", "json", "toml", "dot"}
}

// row is one ranked path with everything the tabular formats print.
type row struct {
	Rank        int     `json:"rank" toml:"rank"`
	Path        string  `json:"path" toml:"path"`
	Betweenness float64 `json:"betweenness" toml:"betweenness"`
	Impact      float64 `json:"impact" toml:"impact"`
	Degree      int     `json:"degree" toml:"degree"`
}

// rows returns the ranked rows, truncated to in.Top.
func rows(in *Input) []row {
	scores := in.Scores
	if in.Top > 0 && in.Top < len(scores) {
		scores = scores[:in.Top]
	}
	out := make([]row, len(scores))
	for i, s := range scores {
		out[i] = row{
			Rank:        i + 1,
			Path:        s.Path,
			Betweenness: s.Value,
			Impact:      in.Impact[s.Path],
		}
		if in.Graph != nil {
			if id, ok := in.Graph.Lookup(s.Path); ok {
				out[i].Degree = in.Graph.Degree(id)
			}
		}
	}
	return out
}

func checkInput(in *Input) error {
	if in == nil {
		return fmt.Errorf("report input is nil")
	}
	return nil
}
