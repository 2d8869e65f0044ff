package contract

import (
	"sort"
	"strings"
)

// IgnorePolicy decides whether a path is excluded from comparison. The check
// runs before any other logic at every node, so an ignored subtree produces
// no differences at all.
type IgnorePolicy interface {
	ShouldIgnore(path string) bool
}

// SegmentIgnore ignores any path whose terminal segment name is in the set,
// at any depth: ignoring "ts" covers "ts", "meta.ts", and "items[].ts".
type SegmentIgnore map[string]struct{}

// NewSegmentIgnore builds a SegmentIgnore from field names. Blank names are
// dropped; surrounding whitespace is trimmed.
func NewSegmentIgnore(names ...string) SegmentIgnore {
	s := make(SegmentIgnore, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		s[n] = struct{}{}
	}
	return s
}

// ShouldIgnore reports whether the terminal segment of path is in the set.
// Array-item suffixes are stripped, so "items[]" matches an ignored "items".
// The root path is never ignored.
func (s SegmentIgnore) ShouldIgnore(path string) bool {
	if len(s) == 0 || path == "" {
		return false
	}
	seg := path
	if i := strings.LastIndex(seg, "."); i >= 0 {
		seg = seg[i+1:]
	}
	for strings.HasSuffix(seg, "[]") {
		seg = seg[:len(seg)-2]
	}
	_, ok := s[seg]
	return ok
}

// Names returns the ignored field names in sorted order.
func (s SegmentIgnore) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
