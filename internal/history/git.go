// Package history produces change sets from version-control history or from
// recorded replay files.
package history

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/papapumpkin/fulcrum/internal/changeset"
)

// commitMarker prefixes each commit header line in the log output.
const commitMarker = "\x1e"

// GitLog reads change sets from a git repository using the git CLI. Each
// commit becomes one change set identified by its hash.
type GitLog struct {
	// RepoDir is the working directory for git commands.
	RepoDir string

	// Since limits history to commits after this time. Zero means all history.
	Since time.Time

	// MergesOnly keeps only merge commits on the first-parent chain and diffs
	// each against its first parent, so one merged branch is one change set.
	MergesOnly bool

	// Filter selects which paths are kept.
	Filter Filter
}

// ChangeSets runs git log and parses its output.
func (g *GitLog) ChangeSets(ctx context.Context) ([]changeset.ChangeSet, error) {
	out, err := g.run(ctx, g.args()...)
	if err != nil {
		return nil, err
	}
	sets, err := ParseLog(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("parsing git log: %w", err)
	}
	return g.Filter.Apply(sets), nil
}

// args builds the git log invocation.
func (g *GitLog) args() []string {
	args := []string{
		"-c", "core.quotePath=false",
		"log",
		"--name-status",
		"-M",
		"--format=" + commitMarker + "%H",
	}
	if !g.Since.IsZero() {
		args = append(args, "--since="+g.Since.Format(time.RFC3339))
	}
	if g.MergesOnly {
		args = append(args, "--merges", "--first-parent", "--diff-merges=first-parent")
	} else {
		args = append(args, "--no-merges")
	}
	return args
}

// run executes a git command and returns its stdout.
func (g *GitLog) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.RepoDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(stderr.String()), err)
	}
	return stdout.Bytes(), nil
}
