// Package resolve flattens an ordered list of overlaying mod file trees into
// one virtual tree, where every relative path maps to exactly one source.
package resolve

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mwantia/modexport/data"
)

// Resolve builds the virtual path map of mods.
//
// Mods are expected in ascending priority order: on a path collision the later
// mod replaces the source of the earlier one. With includeModRootFolder every
// path is prefixed by the mod folder name, so mods can no longer collide.
// Exclusion filters are applied after all collisions are resolved.
func Resolve(mods []data.ModEntry, includeModRootFolder bool, filters Filters) (*PathMap, error) {
	return ResolveContext(context.Background(), mods, includeModRootFolder, filters)
}

// ResolveContext is Resolve with a cancellation check before every mod.
func ResolveContext(ctx context.Context, mods []data.ModEntry, includeModRootFolder bool, filters Filters) (*PathMap, error) {
	paths := NewPathMap()

	for _, mod := range mods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if mod.Separator || mod.Tree == nil {
			continue
		}

		if err := collect(paths, mod, includeModRootFolder); err != nil {
			return nil, err
		}
	}

	paths.exclude(filters)
	return paths, nil
}

func collect(paths *PathMap, mod data.ModEntry, includeModRootFolder bool) error {
	prefix := ""
	if includeModRootFolder {
		prefix = mod.FolderName()
	}

	err := mod.Tree.Walk(func(rel string, kind data.EntryKind) data.WalkAction {
		rel = data.NormalizePath(rel)
		if rel == "" {
			return data.WalkContinue
		}

		paths.Set(data.JoinPath(prefix, rel), Source{
			Path: filepath.Join(mod.Path, filepath.FromSlash(rel)),
			Mod:  mod.Name,
			Kind: kind,
		})

		return data.WalkContinue
	})
	if err != nil {
		return fmt.Errorf("failed to walk mod '%s': %w", mod.Name, err)
	}

	return nil
}
