package changeset

import "sort"

// PathSet is an unordered set of file paths. The zero value is not usable;
// create one with NewPathSet.
type PathSet map[string]struct{}

// NewPathSet returns a set containing the given paths.
func NewPathSet(paths ...string) PathSet {
	s := make(PathSet, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts a path.
func (s PathSet) Add(path string) {
	s[path] = struct{}{}
}

// Has reports whether path is in the set. Safe on a nil set.
func (s PathSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Len returns the number of paths in the set.
func (s PathSet) Len() int {
	return len(s)
}

// Union returns a set holding every path of a and b. Either argument may be
// nil. The larger set is reused as the result, so callers must not keep using
// the arguments afterwards.
func Union(a, b PathSet) PathSet {
	if len(a) < len(b) {
		a, b = b, a
	}
	if a == nil {
		a = make(PathSet, len(b))
	}
	for p := range b {
		a[p] = struct{}{}
	}
	return a
}

// Sorted returns the paths in lexical order.
func (s PathSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
