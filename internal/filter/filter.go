// Package filter implements the optional --include/--exclude glob
// filtering applied during directory enumeration: a repeatable, OR'd
// include set and a repeatable, OR'd exclude set applied after it.
package filter

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides whether a relative path is in scope for comparison.
// An empty Filter (no patterns on either side) includes everything.
type Filter struct {
	include []string
	exclude []string
}

// New builds a Filter from repeatable --include and --exclude values.
// Patterns are lower-cased at construction for case-insensitive matching.
func New(include, exclude []string) *Filter {
	return &Filter{
		include: lowerAll(include),
		exclude: lowerAll(exclude),
	}
}

// Allows reports whether relativePath should be considered at all: it
// must match at least one --include pattern (if any were given), and
// must not match any --exclude pattern.
func (f *Filter) Allows(relativePath string) bool {
	normalized := strings.ToLower(filepathToSlash(relativePath))

	if len(f.include) > 0 && !anyMatch(f.include, normalized) {
		return false
	}

	if anyMatch(f.exclude, normalized) {
		return false
	}

	return true
}

func anyMatch(patterns []string, path string) bool {
	for _, p := range patterns {
		if matched, err := doublestar.Match(p, path); err == nil && matched {
			return true
		}
	}

	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}

	return out
}

// filepathToSlash normalizes backslash-separated paths to the
// forward-slash form doublestar patterns are written against.
func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
