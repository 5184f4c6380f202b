package report

import (
	"fmt"
	"strings"
)

// CSVReport renders one `"path",score` line per ranked path with six
// decimal places. Quotes inside paths are doubled.
type CSVReport struct{}

// Render produces the CSV ranking.
func (r *CSVReport) Render(in *Input) (string, error) {
	if err := checkInput(in); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, row := range rows(in) {
		fmt.Fprintf(&b, "\"%s\",%.6f\n", strings.ReplaceAll(row.Path, `"`, `""`), row.Betweenness)
	}
	return b.String(), nil
}

// TableReport renders the ranking as a markdown table.
type TableReport struct{}

// Render produces a markdown table of the ranking.
func (r *TableReport) Render(in *Input) (string, error) {
	if err := checkInput(in); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Co-change Centrality\n")

	if in.Graph != nil {
		fmt.Fprintf(&b, "\n%d files, %d co-change pairs\n", in.Graph.Len(), in.Graph.EdgeCount())
	}

	ranked := rows(in)
	if len(ranked) == 0 {
		b.WriteString("\nNo files to rank.\n")
		return b.String(), nil
	}

	b.WriteString("\n| # | Path | Betweenness | Impact | Degree |\n")
	b.WriteString("|---|------|-------------|--------|--------|\n")
	for _, row := range ranked {
		fmt.Fprintf(&b, "| %d | %s | %.6f | %.6f | %d |\n",
			row.Rank, strings.ReplaceAll(row.Path, "|", `\|`), row.Betweenness, row.Impact, row.Degree)
	}
	return b.String(), nil
}
