package history

import (
	"fmt"
	"regexp"

	"github.com/papapumpkin/fulcrum/internal/changeset"
)

// Filter selects paths by regular expression. A path is kept when it matches
// at least one Include pattern (or Include is empty) and no Exclude pattern.
type Filter struct {
	Include []*regexp.Regexp
	Exclude []*regexp.Regexp
}

// CompileFilter compiles include and exclude pattern lists.
func CompileFilter(include, exclude []string) (Filter, error) {
	var f Filter
	var err error
	if f.Include, err = compileAll(include); err != nil {
		return Filter{}, fmt.Errorf("include: %w", err)
	}
	if f.Exclude, err = compileAll(exclude); err != nil {
		return Filter{}, fmt.Errorf("exclude: %w", err)
	}
	return f, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Keep reports whether path passes the filter.
func (f Filter) Keep(path string) bool {
	for _, re := range f.Exclude {
		if re.MatchString(path) {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, re := range f.Include {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Apply drops filtered records from every change set. Change sets left
// empty are kept so callers still see one entry per event.
func (f Filter) Apply(sets []changeset.ChangeSet) []changeset.ChangeSet {
	if len(f.Include) == 0 && len(f.Exclude) == 0 {
		return sets
	}
	for i := range sets {
		kept := sets[i].Records[:0]
		for _, r := range sets[i].Records {
			if f.Keep(r.Path) {
				kept = append(kept, r)
			}
		}
		sets[i].Records = kept
	}
	return sets
}
