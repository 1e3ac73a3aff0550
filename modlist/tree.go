package modlist

import (
	"io/fs"
	"path/filepath"

	"github.com/mwantia/modexport/data"
)

// dirTree walks a mod folder on disk. The meta.ini at the root of the
// folder belongs to the mod manager and is never part of the tree.
type dirTree struct {
	root string
}

func (d dirTree) Walk(fn data.WalkFunc) error {
	return filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		rel = filepath.ToSlash(rel)
		if rel == metaFile && !entry.IsDir() {
			return nil
		}

		kind := data.KindFile
		if entry.IsDir() {
			kind = data.KindDirectory
		}

		switch fn(rel, kind) {
		case data.WalkSkip:
			if entry.IsDir() {
				return filepath.SkipDir
			}
		case data.WalkStop:
			return filepath.SkipAll
		}

		return nil
	})
}
