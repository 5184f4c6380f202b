package analysis

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/fulcrum/internal/changeset"
	"github.com/papapumpkin/fulcrum/internal/telemetry"
)

// --- Test fixtures ---

type staticSource struct {
	sets []changeset.ChangeSet
	err  error
}

func (s staticSource) ChangeSets(context.Context) ([]changeset.ChangeSet, error) {
	return s.sets, s.err
}

type recordingEmitter struct {
	mu    sync.Mutex
	kinds []string
	runs  map[string]bool
}

func (r *recordingEmitter) Emit(evt telemetry.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, evt.Kind)
	if r.runs == nil {
		r.runs = make(map[string]bool)
	}
	r.runs[evt.RunID] = true
	return nil
}

func mod(id string, paths ...string) changeset.ChangeSet {
	cs := changeset.ChangeSet{ID: id}
	for _, p := range paths {
		cs.Records = append(cs.Records, changeset.Record{Path: p, Kind: changeset.Modified})
	}
	return cs
}

// chain yields change sets that couple a–b, b–c and c–d equally, giving the
// path graph a – b – c – d.
func chain() []changeset.ChangeSet {
	return []changeset.ChangeSet{
		mod("1", "a", "b"),
		mod("2", "b", "c"),
		mod("3", "c", "d"),
		mod("4", "a", "b"),
		mod("5", "b", "c"),
		mod("6", "c", "d"),
	}
}

func TestRunPathGraph(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{1, 4} {
		em := &recordingEmitter{}
		opts := DefaultOptions()
		opts.Workers = workers
		a := &Analyzer{Source: staticSource{sets: chain()}, Options: opts, Telemetry: em}

		res, err := a.Run(context.Background())
		if err != nil {
			t.Fatalf("workers=%d: Run: %v", workers, err)
		}

		if !res.Distances.IsDistance() || res.Counts.IsDistance() {
			t.Errorf("workers=%d: distance flags wrong", workers)
		}
		// Every pair has count 2, so every distance is 0 and only the chain's
		// shape decides betweenness.
		if w, _ := res.Distances.PathWeight("a", "b"); w != 0 {
			t.Errorf("workers=%d: distance(a, b) = %d, want 0", workers, w)
		}
		if res.Ranking[0].Path != "b" && res.Ranking[0].Path != "c" {
			t.Errorf("workers=%d: top ranked = %s, want b or c", workers, res.Ranking[0].Path)
		}
		for _, end := range []string{"a", "d"} {
			if res.Betweenness[end] != 0 {
				t.Errorf("workers=%d: betweenness[%s] = %v, want 0", workers, end, res.Betweenness[end])
			}
		}
		if res.Build.ChangeSets != 6 || res.Build.Admitted != 6 {
			t.Errorf("workers=%d: build stats = %+v", workers, res.Build)
		}

		want := []string{
			telemetry.KindRunStart,
			telemetry.KindSourceDone,
			telemetry.KindBuildDone,
			telemetry.KindCentralityDone,
			telemetry.KindRunDone,
		}
		if diff := cmp.Diff(want, em.kinds); diff != "" {
			t.Errorf("workers=%d: events mismatch (-want +got):\n%s", workers, diff)
		}
		if len(em.runs) != 1 || !em.runs[res.RunID] {
			t.Errorf("workers=%d: events carry runs %v, want only %s", workers, em.runs, res.RunID)
		}
	}
}

func TestRunWeightedBridge(t *testing.T) {
	t.Parallel()

	// x–hub and hub–y change together often, x–y once: the shortest x–y
	// route runs through hub.
	sets := []changeset.ChangeSet{
		mod("1", "x", "hub"), mod("2", "x", "hub"), mod("3", "x", "hub"),
		mod("4", "hub", "y"), mod("5", "hub", "y"), mod("6", "hub", "y"),
		mod("7", "x", "y"),
	}
	a := &Analyzer{Source: staticSource{sets: sets}, Options: DefaultOptions()}
	res, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if math.Abs(res.Betweenness["hub"]-1) > 1e-9 {
		t.Errorf("betweenness[hub] = %v, want 1", res.Betweenness["hub"])
	}
	if res.Ranking[0].Path != "hub" {
		t.Errorf("top ranked = %s, want hub", res.Ranking[0].Path)
	}
	if res.Impact["hub"] <= res.Impact["x"] {
		t.Errorf("impact[hub] = %v should exceed impact[x] = %v", res.Impact["hub"], res.Impact["x"])
	}
}

func TestRunDeletedAndOversized(t *testing.T) {
	t.Parallel()

	big := make([]string, 50)
	for i := range big {
		big[i] = string(rune('A' + i%26))
		if i >= 26 {
			big[i] += "2"
		}
	}
	gone := mod("3", "a")
	gone.Records[0].Kind = changeset.Deleted
	sets := []changeset.ChangeSet{mod("1", "a", "b", "c"), mod("2", big...), gone}

	a := &Analyzer{Source: staticSource{sets: sets}, Options: DefaultOptions()}
	res, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "c"}, res.Counts.Paths()); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}
	if res.Build.Oversized != 1 {
		t.Errorf("Oversized = %d, want 1", res.Build.Oversized)
	}
	if !res.Deleted.Has("a") {
		t.Error("deleted set should contain a")
	}
	if diff := cmp.Diff([][]string{{"b", "c"}}, res.Components); diff != "" {
		t.Errorf("Components mismatch (-want +got):\n%s", diff)
	}
}

func TestRunTooSmall(t *testing.T) {
	t.Parallel()

	for _, sets := range [][]changeset.ChangeSet{nil, {mod("1", "solo")}} {
		a := &Analyzer{Source: staticSource{sets: sets}, Options: DefaultOptions()}
		res, err := a.Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(res.Betweenness) != 0 || len(res.Impact) != 0 || len(res.Ranking) != 0 {
			t.Errorf("expected empty scores, got %+v", res)
		}
	}
}

func TestRunSourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	em := &recordingEmitter{}
	a := &Analyzer{Source: staticSource{err: boom}, Options: DefaultOptions(), Telemetry: em}
	if _, err := a.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Run = %v, want wrapped boom", err)
	}
	if last := em.kinds[len(em.kinds)-1]; last != telemetry.KindRunFailed {
		t.Errorf("last event = %s, want %s", last, telemetry.KindRunFailed)
	}

	if _, err := (&Analyzer{}).Run(context.Background()); err == nil {
		t.Error("Run without a source should fail")
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := &Analyzer{Source: staticSource{sets: chain()}, Options: DefaultOptions()}
	if _, err := a.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}
