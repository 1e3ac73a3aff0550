package resolve

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mwantia/modexport/data"
)

// Filters is an ordered set of shell-style exclusion patterns.
// Patterns match the whole relative path and "*" also matches "/".
type Filters struct {
	patterns []string
	globs    []glob.Glob
}

// NewFilters compiles the given patterns. Blank patterns are ignored.
func NewFilters(patterns ...string) (Filters, error) {
	var f Filters
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		g, err := glob.Compile(pattern)
		if err != nil {
			return Filters{}, fmt.Errorf("%w: filter '%s': %v", data.ErrInvalidSetting, pattern, err)
		}

		f.patterns = append(f.patterns, pattern)
		f.globs = append(f.globs, g)
	}

	return f, nil
}

// ParseFilters splits a newline separated pattern list, as persisted in settings.
func ParseFilters(text string) (Filters, error) {
	return NewFilters(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")...)
}

// Match reports whether path matches any pattern.
func (f Filters) Match(path string) bool {
	for _, g := range f.globs {
		if g.Match(path) {
			return true
		}
	}

	return false
}

// Patterns returns the compiled patterns in order.
func (f Filters) Patterns() []string {
	return append([]string(nil), f.patterns...)
}

func (f Filters) Len() int {
	return len(f.globs)
}

func (f Filters) String() string {
	return strings.Join(f.patterns, "\n")
}
