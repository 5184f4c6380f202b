// Package builder turns a stream of change sets into one weighted
// co-occurrence graph. Each change set becomes a small local graph; local
// graphs are folded per shard in parallel and the shard results are merged
// pairwise in a balanced tree. Because graph.Merge and changeset.Union are
// associative and commutative, the result does not depend on shard
// boundaries or merge order.
package builder

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/papapumpkin/fulcrum/internal/changeset"
	"github.com/papapumpkin/fulcrum/internal/graph"
)

// Logger is the subset of a structured logger the builder writes to.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
}

// Options configures a Builder.
type Options struct {
	// MaxChangeSetSize discards change sets with more records than this.
	// Zero or negative disables the filter.
	MaxChangeSetSize int

	// ApplyDeletions removes every path seen as Deleted from the final graph.
	ApplyDeletions bool

	// Shards is the number of parallel partitions. Zero means GOMAXPROCS.
	Shards int

	// Logger receives dropped-record warnings and merge progress. Nil discards them.
	Logger Logger
}

// DefaultOptions returns production defaults: threshold 40, deletions
// applied, one shard per available CPU.
func DefaultOptions() Options {
	return Options{
		MaxChangeSetSize: changeset.DefaultMaxSize,
		ApplyDeletions:   true,
		Shards:           runtime.GOMAXPROCS(0),
	}
}

// Stats counts how the input change sets were treated.
type Stats struct {
	ChangeSets     int `json:"change_sets" toml:"change_sets"`
	Admitted       int `json:"admitted" toml:"admitted"`
	Oversized      int `json:"oversized" toml:"oversized"`
	InvalidRecords int `json:"invalid_records" toml:"invalid_records"`
	Removed        int `json:"removed" toml:"removed"`
}

// add returns the field-wise sum of two stats.
func (s Stats) add(o Stats) Stats {
	return Stats{
		ChangeSets:     s.ChangeSets + o.ChangeSets,
		Admitted:       s.Admitted + o.Admitted,
		Oversized:      s.Oversized + o.Oversized,
		InvalidRecords: s.InvalidRecords + o.InvalidRecords,
		Removed:        s.Removed + o.Removed,
	}
}

// Result is the assembled co-occurrence graph and the run-wide deleted set.
type Result struct {
	Graph   *graph.Graph
	Deleted changeset.PathSet
	Stats   Stats
}

// Builder builds co-occurrence graphs from change sets.
type Builder struct {
	opts Options
}

// New creates a Builder. A nil Logger is replaced by a no-op logger.
func New(opts Options) *Builder {
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	if opts.Shards <= 0 {
		opts.Shards = runtime.GOMAXPROCS(0)
	}
	return &Builder{opts: opts}
}

// partial is an intermediate reduction value: a graph, the deleted paths seen
// so far and the counters. combine on partials is associative and commutative.
type partial struct {
	graph   *graph.Graph
	deleted changeset.PathSet
	stats   Stats
}

func emptyPartial() partial {
	return partial{graph: graph.New(), deleted: changeset.NewPathSet()}
}

func combine(a, b partial) partial {
	return partial{
		graph:   graph.Merge(a.graph, b.graph),
		deleted: changeset.Union(a.deleted, b.deleted),
		stats:   a.stats.add(b.stats),
	}
}

// Build reduces all change sets into one graph. Shards are folded
// concurrently, then merged pairwise in parallel rounds. When deletions are
// enabled the deleted set is applied exactly once, after all merging.
func (b *Builder) Build(ctx context.Context, sets []changeset.ChangeSet) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ranges := shardRanges(len(sets), b.opts.Shards)
	parts := make([]partial, len(ranges))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Shards)
	for i, r := range ranges {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parts[i] = b.fold(sets[r.lo:r.hi])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := b.reduce(ctx, parts)
	if err != nil {
		return nil, err
	}
	b.opts.Logger.Debug("graph merged",
		"shards", len(ranges),
		"nodes", merged.graph.Len(),
		"edges", merged.graph.EdgeCount(),
		"deleted", merged.deleted.Len())
	return b.assemble(merged), nil
}

// Fold is the single-threaded reference reduction: change sets are merged
// one by one, left to right. It produces the same graph as Build.
func (b *Builder) Fold(sets []changeset.ChangeSet) *Result {
	return b.assemble(b.fold(sets))
}

func (b *Builder) fold(sets []changeset.ChangeSet) partial {
	acc := emptyPartial()
	for _, cs := range sets {
		g, deleted, stats := b.Local(cs)
		acc = combine(acc, partial{graph: g, deleted: deleted, stats: stats})
	}
	return acc
}

// reduce merges partials in a balanced binary tree. Each round merges
// adjacent pairs concurrently, so m partials take ceil(log2 m) rounds.
func (b *Builder) reduce(ctx context.Context, parts []partial) (partial, error) {
	if len(parts) == 0 {
		return emptyPartial(), nil
	}
	for len(parts) > 1 {
		next := make([]partial, (len(parts)+1)/2)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.opts.Shards)
		for i := 0; i < len(parts); i += 2 {
			if i+1 == len(parts) {
				next[i/2] = parts[i]
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				next[i/2] = combine(parts[i], parts[i+1])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return partial{}, err
		}
		parts = next
	}
	return parts[0], nil
}

// assemble applies the deleted set once and packages the result.
func (b *Builder) assemble(p partial) *Result {
	final := p.graph
	if b.opts.ApplyDeletions && p.deleted.Len() > 0 {
		b.opts.Logger.Debug("removing deleted paths", "paths", p.deleted.Sorted())
		final = p.graph.Without(p.deleted)
		p.stats.Removed = p.graph.Len() - final.Len()
	}
	return &Result{Graph: final, Deleted: p.deleted, Stats: p.stats}
}

// shard is a half-open range [lo, hi) of change-set indexes.
type shard struct {
	lo, hi int
}

// shardRanges splits n items into at most k contiguous, near-equal ranges.
func shardRanges(n, k int) []shard {
	if n == 0 {
		return nil
	}
	if k <= 0 {
		k = 1
	}
	if k > n {
		k = n
	}
	out := make([]shard, 0, k)
	size, rem := n/k, n%k
	lo := 0
	for i := 0; i < k; i++ {
		hi := lo + size
		if i < rem {
			hi++
		}
		out = append(out, shard{lo: lo, hi: hi})
		lo = hi
	}
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}
func (nopLogger) Warn(interface{}, ...interface{})  {}
