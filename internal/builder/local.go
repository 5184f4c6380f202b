package builder

import (
	"github.com/papapumpkin/fulcrum/internal/changeset"
	"github.com/papapumpkin/fulcrum/internal/graph"
)

// Local converts one change set into its own graph and deleted set.
//
// Oversized change sets produce an empty graph. Invalid records are dropped
// and logged. When a path occurs more than once, its first record wins.
// Deleted records feed the deleted set; every other path becomes a node and
// each unordered pair of those nodes gets weight 1.
func (b *Builder) Local(cs changeset.ChangeSet) (*graph.Graph, changeset.PathSet, Stats) {
	g := graph.New()
	deleted := changeset.NewPathSet()
	stats := Stats{ChangeSets: 1}

	if cs.Oversized(b.opts.MaxChangeSetSize) {
		stats.Oversized = 1
		b.opts.Logger.Debug("skipping oversized change set",
			"changeset", cs.ID, "records", cs.Len(), "max", b.opts.MaxChangeSetSize)
		return g, deleted, stats
	}
	stats.Admitted = 1

	seen := make(map[string]struct{}, len(cs.Records))
	ids := make([]graph.NodeID, 0, len(cs.Records))
	for _, r := range cs.Records {
		if err := r.Validate(); err != nil {
			stats.InvalidRecords++
			b.opts.Logger.Warn("dropping record", "changeset", cs.ID, "err", err)
			continue
		}
		if _, dup := seen[r.Path]; dup {
			continue
		}
		seen[r.Path] = struct{}{}

		if r.Kind == changeset.Deleted {
			deleted.Add(r.Path)
			continue
		}
		ids = append(ids, g.AddNode(r.Path, r.Kind))
	}

	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			// Distinct paths and a count graph: AddWeight cannot fail here.
			_ = g.AddWeight(ids[i], ids[j], 1)
		}
	}
	return g, deleted, stats
}
