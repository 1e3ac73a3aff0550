package data

import (
	"path"
	"strings"
)

// NormalizePath converts a relative path into its forward-slash form.
// Backslashes are treated as separators, leading slashes and "." segments are removed.
// The case of every segment is preserved.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)

	return strings.TrimPrefix(p, "/")
}

// JoinPath joins the given segments into one normalized relative path.
func JoinPath(elems ...string) string {
	return NormalizePath(path.Join(elems...))
}

// ParentPath returns the normalized parent of p, or "" for top-level entries.
func ParentPath(p string) string {
	parent := path.Dir(NormalizePath(p))
	if parent == "." || parent == "/" {
		return ""
	}

	return parent
}
