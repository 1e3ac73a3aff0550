package resolve

import (
	"github.com/mwantia/modexport/data"
	"github.com/tidwall/btree"
)

// Source is the chosen origin of one virtual path.
type Source struct {
	// Absolute source path
	Path string `json:"path"`

	// Name of the mod that won the path
	Mod string `json:"mod"`

	Kind data.EntryKind `json:"kind"`
}

// PathMap maps forward-slash relative paths to their winning source.
// Keys are kept in ascending order, so parents are visited before their children.
type PathMap struct {
	entries *btree.Map[string, Source]

	// Relative paths removed by exclusion filters
	excluded []string
}

func NewPathMap() *PathMap {
	return &PathMap{
		entries: btree.NewMap[string, Source](0),
	}
}

// Set stores src for path, replacing any previous source.
// Returns the replaced source, if any.
func (m *PathMap) Set(path string, src Source) (Source, bool) {
	return m.entries.Set(data.NormalizePath(path), src)
}

func (m *PathMap) Get(path string) (Source, bool) {
	return m.entries.Get(data.NormalizePath(path))
}

func (m *PathMap) Delete(path string) (Source, bool) {
	return m.entries.Delete(data.NormalizePath(path))
}

func (m *PathMap) Len() int {
	if m == nil {
		return 0
	}

	return m.entries.Len()
}

// Empty reports whether nothing is left to export.
func (m *PathMap) Empty() bool {
	return m.Len() == 0
}

// Scan visits all entries in ascending path order until fn returns false.
func (m *PathMap) Scan(fn func(path string, src Source) bool) {
	if m == nil {
		return
	}

	m.entries.Scan(fn)
}

// Paths returns all paths in ascending order.
func (m *PathMap) Paths() []string {
	if m == nil {
		return nil
	}

	return m.entries.Keys()
}

// Excluded returns the paths removed by exclusion filters, in ascending order.
func (m *PathMap) Excluded() []string {
	if m == nil {
		return nil
	}

	return append([]string(nil), m.excluded...)
}

// exclude removes every entry matching filters and records it.
func (m *PathMap) exclude(filters Filters) {
	if filters.Len() == 0 {
		return
	}

	var matched []string
	m.entries.Scan(func(path string, _ Source) bool {
		if filters.Match(path) {
			matched = append(matched, path)
		}
		return true
	})

	for _, path := range matched {
		m.entries.Delete(path)
	}

	m.excluded = append(m.excluded, matched...)
}
