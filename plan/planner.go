// Package plan turns a resolved virtual path map into an export plan.
// Building a plan never touches the filesystem.
package plan

import (
	"github.com/mwantia/modexport/data"
	"github.com/mwantia/modexport/resolve"
)

// Build creates the export plan for paths.
//
// Every directory becomes a create-directory entry and every file a write-file
// entry, in ascending path order. overwriteExisting selects the policy the
// engine applies when a target already exists.
func Build(paths *resolve.PathMap, overwriteExisting bool) *data.Plan {
	policy := data.PolicyPreserve
	if overwriteExisting {
		policy = data.PolicyOverwrite
	}

	p := &data.Plan{
		Entries:  make([]data.PlanEntry, 0, paths.Len()),
		Filtered: paths.Excluded(),
	}

	paths.Scan(func(path string, src resolve.Source) bool {
		action := data.ActionWriteFile
		if src.Kind.IsDir() {
			action = data.ActionCreateDirectory
		}

		p.Entries = append(p.Entries, data.PlanEntry{
			Path:   path,
			Source: src.Path,
			Mod:    src.Mod,
			Kind:   src.Kind,
			Action: action,
			Policy: policy,
		})
		return true
	})

	return p
}
