package data

import (
	"path/filepath"
	"sort"
	"strings"
)

// OverwriteModName is the name of the loose-file override layer.
// It wins every collision when appended to an active sequence.
const OverwriteModName = "overwrite"

// ModEntry is one mod as supplied by a mod list source.
// Entries are read-only for the duration of one export run.
type ModEntry struct {
	// Display name of the mod
	Name string `json:"name"`

	// Absolute root path of the mod files
	Path string `json:"path"`

	// Version display string, empty if unknown
	Version string `json:"version,omitempty"`

	// Explicit source URL, empty if unknown
	URL string `json:"url,omitempty"`

	// External catalog id, 0 if unknown
	NexusID int `json:"nexus_id,omitempty"`

	// Separators are marker entries without any files
	Separator bool `json:"separator,omitempty"`

	// File tree relative to Path (nil for separators)
	Tree FileTree `json:"-"`
}

// FolderName returns the name of the mod root folder.
// Falls back to the mod name when no path is known.
func (m ModEntry) FolderName() string {
	if m.Path != "" {
		return filepath.Base(filepath.Clean(m.Path))
	}

	return m.Name
}

// IsOverwrite reports whether m is the overwrite pseudo-mod.
func (m ModEntry) IsOverwrite() bool {
	return m.Name == OverwriteModName
}

// WalkAction tells a FileTree walk how to continue after an entry.
type WalkAction int

const (
	WalkContinue WalkAction = iota // Keep walking
	WalkSkip                       // Do not descend into this directory
	WalkStop                       // Stop the walk
)

// WalkFunc is called for every entry of a FileTree, depth-first.
// The path is relative to the tree root and uses forward slashes.
type WalkFunc func(path string, kind EntryKind) WalkAction

// FileTree is the walkable file tree of a single mod.
type FileTree interface {
	Walk(fn WalkFunc) error
}

// StaticTree is an in-memory FileTree built from a list of relative paths.
// Directories are derived from the file paths; paths ending in "/" are empty directories.
type StaticTree struct {
	entries map[string]EntryKind
}

func NewStaticTree(paths ...string) *StaticTree {
	tree := &StaticTree{
		entries: make(map[string]EntryKind),
	}

	for _, p := range paths {
		kind := KindFile
		if strings.HasSuffix(p, "/") {
			kind = KindDirectory
		}

		p = NormalizePath(p)
		if p == "" {
			continue
		}

		tree.entries[p] = kind
		for parent := ParentPath(p); parent != ""; parent = ParentPath(parent) {
			tree.entries[parent] = KindDirectory
		}
	}

	return tree
}

// Walk visits every entry depth-first, directories before their children.
func (t *StaticTree) Walk(fn WalkFunc) error {
	if t == nil {
		return nil
	}

	paths := make([]string, 0, len(t.entries))
	for p := range t.entries {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		return pathLess(paths[i], paths[j])
	})

	skipped := make([]string, 0)
	for _, p := range paths {
		if underAny(p, skipped) {
			continue
		}

		switch fn(p, t.entries[p]) {
		case WalkStop:
			return nil
		case WalkSkip:
			skipped = append(skipped, p)
		}
	}

	return nil
}

// pathLess orders paths segment by segment, so parents sort before children.
func pathLess(a, b string) bool {
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")

	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}

	return len(as) < len(bs)
}

func underAny(p string, dirs []string) bool {
	for _, dir := range dirs {
		if strings.HasPrefix(p, dir+"/") {
			return true
		}
	}

	return false
}
