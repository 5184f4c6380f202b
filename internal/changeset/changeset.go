// Package changeset defines the change events consumed by the graph builder:
// a ChangeSet is the list of files touched by one commit, each tagged with
// the kind of change applied to it.
package changeset

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxSize is the number of records above which a change set is
// treated as a mass refactor and discarded.
const DefaultMaxSize = 40

// ErrInvalidRecord is returned when a record has an empty or malformed path.
var ErrInvalidRecord = errors.New("invalid record")

// ErrUnknownKind is returned when a change kind cannot be parsed.
var ErrUnknownKind = errors.New("unknown change kind")

// Kind is the type of change applied to a file within one change set.
type Kind int

const (
	Added    Kind = iota // file created (or copied)
	Modified             // file edited, renamed or type-changed
	Deleted              // file removed
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a kind name back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "added", "add", "a":
		return Added, nil
	case "modified", "modify", "m":
		return Modified, nil
	case "deleted", "delete", "d":
		return Deleted, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Added, Modified, Deleted:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Combine merges two observations of the same file. Equal kinds are kept;
// differing kinds collapse to Modified. The operation is commutative and
// associative so graph merges may apply it in any order.
func Combine(a, b Kind) Kind {
	if a == b {
		return a
	}
	return Modified
}

// Record is a single (path, kind) entry in a change set.
type Record struct {
	Path string `toml:"path" json:"path"`
	Kind Kind   `toml:"kind" json:"kind"`
}

// Validate reports whether the record's path is usable as a node identity.
// Empty, whitespace-only, and paths containing NUL or line breaks are
// rejected with ErrInvalidRecord.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidRecord)
	}
	if strings.ContainsAny(r.Path, "\x00\n\r") {
		return fmt.Errorf("%w: malformed path %q", ErrInvalidRecord, r.Path)
	}
	return nil
}

// ChangeSet is the ordered list of records produced by one event (commit).
// ID identifies the event for logging; it may be empty.
type ChangeSet struct {
	ID      string   `toml:"id" json:"id,omitempty"`
	Records []Record `toml:"records" json:"records"`
}

// Len returns the number of records, including duplicates and invalid ones.
func (cs ChangeSet) Len() int {
	return len(cs.Records)
}

// Oversized reports whether the change set exceeds max records and must be
// discarded. A non-positive max disables the filter.
func (cs ChangeSet) Oversized(max int) bool {
	return max > 0 && len(cs.Records) > max
}
