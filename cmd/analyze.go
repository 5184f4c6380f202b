package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/fulcrum/internal/analysis"
	"github.com/papapumpkin/fulcrum/internal/changeset"
	"github.com/papapumpkin/fulcrum/internal/config"
	"github.com/papapumpkin/fulcrum/internal/history"
	"github.com/papapumpkin/fulcrum/internal/report"
	"github.com/papapumpkin/fulcrum/internal/telemetry"
	"github.com/papapumpkin/fulcrum/internal/ui"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rank files by co-change betweenness centrality",
	Long: `Reads change sets from git history (or a recorded replay file), builds the
co-change graph and prints a ranking of files by betweenness centrality.

With --neighbours, prints the DOT subgraph around one file instead.
--weights=distance labels DOT edges with the distances centrality runs on
rather than raw co-change counts.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

// analyzeFlags maps flag names to config keys.
func analyzeFlags() map[string]string {
	return map[string]string{
		"repo":               "repo",
		"since":              "since",
		"merges-only":        "merges_only",
		"include":            "include",
		"exclude":            "exclude",
		"changes-file":       "changes_file",
		"max-changeset-size": "max_changeset_size",
		"apply-deletions":    "apply_deletions",
		"workers":            "workers",
		"shards":             "shards",
		"report":             "report",
		"weights":            "weights",
		"top":                "top",
		"alpha":              "alpha",
		"telemetry":          "telemetry_path",
	}
}

func init() {
	f := analyzeCmd.Flags()
	f.String("repo", ".", "git repository to read history from")
	f.String("since", "", "only use commits after this date (YYYY-MM-DD or RFC 3339)")
	f.Bool("merges-only", false, "use first-parent merge commits as change sets")
	f.StringSlice("include", nil, "keep only paths matching these regular expressions")
	f.StringSlice("exclude", nil, "drop paths matching these regular expressions")
	f.String("changes-file", "", "read change sets from a TOML replay file instead of git")
	f.Int("max-changeset-size", changeset.DefaultMaxSize, "skip change sets with more files than this (0 disables)")
	f.Bool("apply-deletions", true, "remove files deleted at any point from the graph")
	f.Int("workers", 0, "goroutines for centrality (0 = all CPUs, 1 = sequential)")
	f.Int("shards", 0, "graph build partitions (0 = all CPUs)")
	f.StringP("report", "r", "csv", "output format: "+strings.Join(report.FormatNames(), ", "))
	f.String("weights", config.WeightsCount, "edge weights for dot and --neighbours output: count or distance")
	f.Int("top", 0, "print only the top N files (0 = all)")
	f.Float64("alpha", 0.6, "PageRank weight in the impact score")
	f.String("telemetry", "", "append JSONL run events to this file")
	f.StringP("output", "o", "", "write the report to this file instead of stdout")
	f.String("record", "", "save the change sets read to this TOML replay file")
	f.String("neighbours", "", "print the DOT neighbourhood of this file instead of a ranking")
	f.Int("depth", 1, "neighbourhood depth in hops")

	for flag, key := range analyzeFlags() {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	format, err := report.FormatByName(cfg.Report)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	record, _ := cmd.Flags().GetString("record")
	neighbours, _ := cmd.Flags().GetString("neighbours")
	depth, _ := cmd.Flags().GetInt("depth")

	printer := ui.New()
	logger := newLogger(os.Stderr, cfg.Verbose)

	src, desc, err := newSource(cfg)
	if err != nil {
		return err
	}
	if record != "" {
		src = &recordingSource{Source: src, Path: record}
	}

	var em *telemetry.Emitter
	if cfg.TelemetryPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TelemetryPath), 0o755); err != nil {
			return fmt.Errorf("creating telemetry directory: %w", err)
		}
		if em, err = telemetry.NewEmitter(cfg.TelemetryPath); err != nil {
			return err
		}
		defer em.Close()
	}

	opts := analysis.DefaultOptions()
	opts.Builder.MaxChangeSetSize = cfg.MaxChangeSetSize
	opts.Builder.ApplyDeletions = cfg.ApplyDeletions
	if cfg.Shards > 0 {
		opts.Builder.Shards = cfg.Shards
	}
	opts.Workers = cfg.Workers
	opts.Scoring.Alpha = cfg.Alpha

	printer.Banner(desc)
	a := &analysis.Analyzer{Source: src, Options: opts, Logger: logger, Telemetry: em}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := a.Run(ctx)
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	printer.BuildSummary(res.Build, res.Counts.Len(), res.Counts.EdgeCount())

	shown := res.Counts
	if cfg.Weights == config.WeightsDistance {
		shown = res.Distances
	}

	var out string
	if neighbours != "" {
		printer.Step(fmt.Sprintf("neighbourhood of %s (depth %d, %s weights)", neighbours, depth, cfg.Weights))
		out, err = report.Neighbourhood(shown, neighbours, depth)
	} else {
		printer.Step("rendering " + cfg.Report + " report")
		out, err = format.Render(&report.Input{
			Graph:  shown,
			Scores: res.Ranking,
			Impact: res.Impact,
			Top:    cfg.Top,
		})
	}
	if err != nil {
		return err
	}

	if output == "" {
		fmt.Fprint(cmd.OutOrStdout(), out)
	} else {
		if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		printer.Written(output, len(out))
	}
	printer.Done(len(res.Betweenness), res.Elapsed)
	return nil
}

// newSource picks the replay file when one is configured and git otherwise.
func newSource(cfg config.Config) (analysis.Source, string, error) {
	filter, err := history.CompileFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, "", err
	}
	if cfg.ChangesFile != "" {
		return &history.File{Path: cfg.ChangesFile, Filter: filter}, "replay " + cfg.ChangesFile, nil
	}
	since, err := cfg.SinceTime()
	if err != nil {
		return nil, "", err
	}
	src := &history.GitLog{
		RepoDir:    cfg.Repo,
		Since:      since,
		MergesOnly: cfg.MergesOnly,
		Filter:     filter,
	}
	return src, "git log of " + cfg.Repo, nil
}

// recordingSource saves every change set it passes through to a replay file.
type recordingSource struct {
	Source analysis.Source
	Path   string
}

func (r *recordingSource) ChangeSets(ctx context.Context) ([]changeset.ChangeSet, error) {
	sets, err := r.Source.ChangeSets(ctx)
	if err != nil {
		return nil, err
	}
	if err := history.SaveTOML(r.Path, sets); err != nil {
		return nil, fmt.Errorf("recording change sets: %w", err)
	}
	return sets, nil
}
