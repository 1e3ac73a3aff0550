// Package modlist reads the ordered list of active mods from a Mod Organizer
// style instance directory.
package modlist

import (
	"context"

	"github.com/mwantia/modexport/data"
)

// Source supplies the active mods of one profile.
type Source interface {
	// ActiveMods returns the enabled mods in ascending priority order, or in
	// descending order when reverse is set. Separators are only included when
	// includeSeparators is set.
	ActiveMods(ctx context.Context, reverse, includeSeparators bool) ([]data.ModEntry, error)

	// Mod returns a single mod by name, including the "overwrite" pseudo-mod.
	Mod(ctx context.Context, name string) (data.ModEntry, error)
}
