// Package analysis is the primary entry point for co-change analysis. It wires
// a change-set source, the graph builder and the centrality engine behind a
// single Run call and records each stage as a telemetry event.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/papapumpkin/fulcrum/internal/builder"
	"github.com/papapumpkin/fulcrum/internal/centrality"
	"github.com/papapumpkin/fulcrum/internal/changeset"
	"github.com/papapumpkin/fulcrum/internal/graph"
	"github.com/papapumpkin/fulcrum/internal/telemetry"
)

// Source yields the change sets to analyze.
type Source interface {
	ChangeSets(ctx context.Context) ([]changeset.ChangeSet, error)
}

// Logger is the structured logger the pipeline reports progress to.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
}

// Emitter receives telemetry events.
type Emitter interface {
	Emit(evt telemetry.Event) error
}

// Options configures a run.
type Options struct {
	// Builder configures graph construction.
	Builder builder.Options

	// Workers bounds the goroutines used for centrality. 1 runs every stage
	// single-threaded; 0 means GOMAXPROCS.
	Workers int

	// Scoring configures PageRank and the impact blend.
	Scoring centrality.ScoringOptions
}

// DefaultOptions returns production defaults for every stage.
func DefaultOptions() Options {
	return Options{
		Builder: builder.DefaultOptions(),
		Scoring: centrality.DefaultScoringOptions(),
	}
}

// Result holds every product of a run.
type Result struct {
	// Counts is the co-change count graph after deletions.
	Counts *graph.Graph

	// Distances is Counts after the distance transform.
	Distances *graph.Graph

	// Deleted lists every path seen as deleted.
	Deleted changeset.PathSet

	// Components lists the connected components of Counts, largest first.
	Components [][]string

	Betweenness map[string]float64
	Impact      map[string]float64

	// Ranking orders paths by betweenness, highest first.
	Ranking []centrality.Score

	Build   builder.Stats
	RunID   string
	Elapsed time.Duration
}

// Analyzer runs the full pipeline.
type Analyzer struct {
	Source    Source
	Options   Options
	Logger    Logger
	Telemetry Emitter
}

// Run reads change sets, builds the co-change graph, converts it to
// distances once and computes betweenness, PageRank and impact. A graph
// with fewer than two files produces empty scores, not an error.
func (a *Analyzer) Run(ctx context.Context) (*Result, error) {
	if a.Source == nil {
		return nil, fmt.Errorf("analysis: no change-set source")
	}
	log := a.Logger
	if log == nil {
		log = nopLogger{}
	}
	res := &Result{RunID: telemetry.NewRunID()}
	start := time.Now()
	a.emit(res.RunID, telemetry.KindRunStart, nil)

	err := a.run(ctx, log, res)
	res.Elapsed = time.Since(start)
	if err != nil {
		a.emit(res.RunID, telemetry.KindRunFailed, map[string]any{"error": err.Error()})
		return nil, err
	}
	a.emit(res.RunID, telemetry.KindRunDone, map[string]any{
		"elapsed_ms": res.Elapsed.Milliseconds(),
		"files":      res.Counts.Len(),
	})
	return res, nil
}

func (a *Analyzer) run(ctx context.Context, log Logger, res *Result) error {
	sets, err := a.Source.ChangeSets(ctx)
	if err != nil {
		return fmt.Errorf("reading change sets: %w", err)
	}
	log.Info("change sets loaded", "count", len(sets))
	a.emit(res.RunID, telemetry.KindSourceDone, map[string]any{"change_sets": len(sets)})

	bopts := a.Options.Builder
	bopts.Logger = log
	b := builder.New(bopts)
	var built *builder.Result
	if a.Options.Workers == 1 {
		built = b.Fold(sets)
	} else if built, err = b.Build(ctx, sets); err != nil {
		return fmt.Errorf("building graph: %w", err)
	}
	res.Counts = built.Graph
	res.Deleted = built.Deleted
	res.Build = built.Stats
	res.Components = res.Counts.Components()
	log.Info("graph built",
		"files", res.Counts.Len(),
		"pairs", res.Counts.EdgeCount(),
		"components", len(res.Components),
		"oversized", built.Stats.Oversized,
		"invalid", built.Stats.InvalidRecords)
	a.emit(res.RunID, telemetry.KindBuildDone, map[string]any{
		"files":      res.Counts.Len(),
		"pairs":      res.Counts.EdgeCount(),
		"components": len(res.Components),
		"admitted":   built.Stats.Admitted,
		"oversized":  built.Stats.Oversized,
		"invalid":    built.Stats.InvalidRecords,
		"deleted":    built.Deleted.Len(),
	})

	if err := ctx.Err(); err != nil {
		return err
	}
	if res.Distances, err = res.Counts.DistanceGraph(); err != nil {
		return fmt.Errorf("distance transform: %w", err)
	}

	if res.Counts.Len() < 2 {
		log.Warn("too few files to score", "files", res.Counts.Len())
		res.Betweenness = map[string]float64{}
		res.Impact = map[string]float64{}
		return nil
	}

	started := time.Now()
	if a.Options.Workers == 1 {
		res.Betweenness, err = centrality.Betweenness(res.Distances)
	} else {
		res.Betweenness, err = centrality.BetweennessParallel(res.Distances, a.Options.Workers)
	}
	if err != nil {
		return fmt.Errorf("betweenness: %w", err)
	}
	pr, err := centrality.PageRank(res.Counts, a.Options.Scoring.PageRank)
	if err != nil {
		return fmt.Errorf("pagerank: %w", err)
	}
	res.Impact = centrality.Impact(res.Betweenness, pr, a.Options.Scoring.Alpha)
	res.Ranking = centrality.Rank(res.Betweenness)
	log.Debug("centrality computed", "elapsed", time.Since(started))
	a.emit(res.RunID, telemetry.KindCentralityDone, map[string]any{
		"files":      len(res.Betweenness),
		"elapsed_ms": time.Since(started).Milliseconds(),
	})
	return nil
}

func (a *Analyzer) emit(runID, kind string, data any) {
	if a.Telemetry == nil {
		return
	}
	// Telemetry is best-effort; a failed write must not fail the run.
	_ = a.Telemetry.Emit(telemetry.Event{Kind: kind, RunID: runID, Data: data})
}

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}
func (nopLogger) Info(interface{}, ...interface{})  {}
func (nopLogger) Warn(interface{}, ...interface{})  {}
