package history

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/papapumpkin/fulcrum/internal/changeset"
)

// ErrMalformedLog is returned when git log output cannot be parsed.
var ErrMalformedLog = errors.New("malformed log")

const maxLineSize = 1 << 20

// ParseLog reads `git log --name-status` output in which each commit starts
// with a line holding the commit marker and hash. Status letters map to
// record kinds: A and C are Added, D is Deleted and everything else is
// Modified. Renames keep the pre-rename path; copies keep the new path.
func ParseLog(r io.Reader) ([]changeset.ChangeSet, error) {
	var (
		sets    []changeset.ChangeSet
		current *changeset.ChangeSet
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, commitMarker) {
			sets = append(sets, changeset.ChangeSet{ID: strings.TrimSpace(line[len(commitMarker):])})
			current = &sets[len(sets)-1]
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("%w: line %d: status before any commit header", ErrMalformedLog, lineNo)
		}
		rec, err := parseStatus(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedLog, lineNo, err)
		}
		current.Records = append(current.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	return sets, nil
}

// parseStatus parses one name-status line: "M\tpath", "R087\told\tnew".
func parseStatus(line string) (changeset.Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 || fields[0] == "" {
		return changeset.Record{}, fmt.Errorf("unexpected status line %q", line)
	}

	status := fields[0][0]
	path := fields[1]
	kind := changeset.Modified
	switch status {
	case 'A':
		kind = changeset.Added
	case 'C':
		kind = changeset.Added
		if len(fields) < 3 {
			return changeset.Record{}, fmt.Errorf("copy without destination %q", line)
		}
		path = fields[2]
	case 'D':
		kind = changeset.Deleted
	}

	path, err := unquote(path)
	if err != nil {
		return changeset.Record{}, err
	}
	return changeset.Record{Path: path, Kind: kind}, nil
}

// unquote reverses git's C-style quoting of unusual paths.
func unquote(path string) (string, error) {
	if len(path) < 2 || path[0] != '"' {
		return path, nil
	}
	p, err := strconv.Unquote(path)
	if err != nil {
		return "", fmt.Errorf("unquoting path %s: %w", path, err)
	}
	return p, nil
}
