package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/fulcrum/internal/changeset"
)

// Replay is the on-disk form of a recorded change-set stream:
//
//	[[changeset]]
//	id = "c1"
//	records = [{ path = "a.go", kind = "modified" }]
type Replay struct {
	ChangeSets []changeset.ChangeSet `toml:"changeset"`
}

// DecodeTOML parses a replay document.
func DecodeTOML(data []byte) ([]changeset.ChangeSet, error) {
	var r Replay
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing change sets: %w", err)
	}
	return r.ChangeSets, nil
}

// LoadTOML reads a replay file from path.
func LoadTOML(path string) ([]changeset.ChangeSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return DecodeTOML(data)
}

// SaveTOML writes change sets as a replay file, creating parent directories
// as needed.
func SaveTOML(path string, sets []changeset.ChangeSet) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	data, err := toml.Marshal(Replay{ChangeSets: sets})
	if err != nil {
		return fmt.Errorf("marshaling change sets: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// File is a change-set source backed by a replay file.
type File struct {
	Path   string
	Filter Filter
}

// ChangeSets loads the replay file and applies the filter.
func (f *File) ChangeSets(ctx context.Context) ([]changeset.ChangeSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sets, err := LoadTOML(f.Path)
	if err != nil {
		return nil, err
	}
	return f.Filter.Apply(sets), nil
}
