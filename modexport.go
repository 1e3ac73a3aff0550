// Package modexport exports the active mods of a mod list to a folder, a zip
// archive or a Markdown list.
//
// Every export runs through the same pipeline: the active mods are read from
// a modlist.Source, flattened into one virtual tree, turned into a plan and
// handed to exactly one engine.
package modexport

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwantia/modexport/data"
	"github.com/mwantia/modexport/export"
	"github.com/mwantia/modexport/log"
	"github.com/mwantia/modexport/modlist"
	"github.com/mwantia/modexport/plan"
	"github.com/mwantia/modexport/resolve"
	"github.com/mwantia/modexport/settings"
	"github.com/mwantia/modexport/settings/backend/memory"
)

// Exporter runs export operations against one mod list source.
// Only one operation runs at a time.
type Exporter struct {
	source modlist.Source
	store  settings.Store
	logger *log.Logger

	// sameVolume decides whether hardlinks can work between two paths
	sameVolume func(a, b string) (bool, error)
}

func New(source modlist.Source, opts ...ExporterOption) (*Exporter, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: missing mod list source", data.ErrInvalid)
	}

	options := newDefaultExporterOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	logger := options.Logger
	if logger == nil {
		logger = log.NewLogger("modexport", options.LogLevel, options.LogFile, options.NoTerminalLog)
		logger.JSON = options.LogJSON
	}

	store := options.Store
	if store == nil {
		store = memory.NewMemoryStore()
	}

	return &Exporter{
		source:     source,
		store:      store,
		logger:     logger,
		sameVolume: export.SameVolume,
	}, nil
}

func (e *Exporter) Logger() *log.Logger {
	return e.logger
}

func (e *Exporter) Store() settings.Store {
	return e.store
}

func (e *Exporter) Source() modlist.Source {
	return e.source
}

// Run executes op and logs its result.
// An empty selection is returned as ErrEmptySelection before any I/O.
func (e *Exporter) Run(ctx context.Context, op Operation) (*Result, error) {
	logger := e.logger.Named(op.Name())

	result, err := op.Run(ctx, e)
	switch {
	case errors.Is(err, data.ErrEmptySelection):
		logger.Info("No active mods to export")
	case err != nil:
		logger.Error("Export failed: %v", err)
	case result.Outcome != nil:
		logger.Info("Export %s: %s", result.Outcome.RunID, result.Outcome)
	default:
		logger.Info("Exported %d mods to %s", result.Mods, result.Artifact)
	}

	return result, err
}

// selectMods returns the mods of one export run in ascending priority order.
func (e *Exporter) selectMods(ctx context.Context, sel settings.Selection) ([]data.ModEntry, error) {
	mods, err := e.source.ActiveMods(ctx, false, sel.IncludeSeparators)
	if err != nil {
		return nil, err
	}

	if !hasContent(mods) {
		return nil, data.ErrEmptySelection
	}

	if sel.IncludeOverwrite {
		overwrite, err := e.source.Mod(ctx, data.OverwriteModName)
		switch {
		case errors.Is(err, data.ErrModNotFound):
			e.logger.Warn("No '%s' folder to include", data.OverwriteModName)
		case err != nil:
			return nil, err
		default:
			mods = append(mods, overwrite)
		}
	}

	return mods, nil
}

// buildPlan resolves mods into the plan handed to an engine.
func (e *Exporter) buildPlan(ctx context.Context, mods []data.ModEntry, sel settings.Selection, overwriteExisting bool) (*data.Plan, error) {
	filters, err := sel.Filters()
	if err != nil {
		return nil, err
	}

	paths, err := resolve.ResolveContext(ctx, mods, sel.ExportType.SeparateFolders(), filters)
	if err != nil {
		return nil, err
	}

	p := plan.Build(paths, overwriteExisting)
	e.logger.Debug("Planned %d entries (%d files) from %d mods, %d filtered",
		p.Len(), p.Files(), len(mods), len(p.Filtered))

	return p, nil
}

func hasContent(mods []data.ModEntry) bool {
	for _, mod := range mods {
		if !mod.Separator {
			return true
		}
	}

	return false
}
