package report

import (
	"encoding/json"
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
)

// dataOutput is the top-level structure shared by the JSON and TOML reports.
type dataOutput struct {
	Files      int   `json:"files" toml:"files"`
	Pairs      int   `json:"pairs" toml:"pairs"`
	Components int   `json:"components" toml:"components"`
	Ranking    []row `json:"ranking" toml:"ranking"`
}

func buildData(in *Input) dataOutput {
	out := dataOutput{Ranking: rows(in)}
	if in.Graph != nil {
		out.Files = in.Graph.Len()
		out.Pairs = in.Graph.EdgeCount()
		out.Components = len(in.Graph.Components())
	}
	return out
}

// JSONReport renders the ranking and graph totals as JSON for external
// tooling.
type JSONReport struct{}

// Render produces an indented JSON document.
func (r *JSONReport) Render(in *Input) (string, error) {
	if err := checkInput(in); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(buildData(in), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON report: %w", err)
	}
	return string(data) + "\n", nil
}

// TOMLReport renders the same document as JSONReport in TOML.
type TOMLReport struct{}

// Render produces a TOML document with one [[ranking]] table per path.
func (r *TOMLReport) Render(in *Input) (string, error) {
	if err := checkInput(in); err != nil {
		return "", err
	}
	data, err := toml.Marshal(buildData(in))
	if err != nil {
		return "", fmt.Errorf("marshaling TOML report: %w", err)
	}
	return string(data), nil
}
