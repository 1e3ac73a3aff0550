package modexport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mwantia/modexport/data"
	"github.com/mwantia/modexport/export"
	"github.com/mwantia/modexport/markdown"
	"github.com/mwantia/modexport/settings"
	"github.com/mwantia/modexport/sink"
)

// Operation is one kind of export the exporter can run.
type Operation interface {
	Name() string
	Run(ctx context.Context, e *Exporter) (*Result, error)
}

// Result describes a finished operation.
type Result struct {
	Operation string

	// Engine outcome, nil for Markdown exports
	Outcome *data.Outcome

	// Number of mods the operation selected
	Mods int

	// Folder, archive or sink name the export went to
	Artifact string

	// Set when hardlinks were requested but the target is on another volume
	HardlinksDisabled bool

	// Sink the finished archive was uploaded to
	Uploaded string
}

// FolderExport copies or links the selected mods into a target folder.
type FolderExport struct {
	Target   string
	Config   settings.FolderConfig
	Progress export.ProgressFunc
}

// ArchiveExport compresses the selected mods into a zip archive and
// optionally uploads the finished archive.
type ArchiveExport struct {
	Target   string
	Config   settings.ArchiveConfig
	Progress export.ProgressFunc
	Upload   sink.Sink
}

// MarkdownExport writes the active mod list as Markdown into a sink.
type MarkdownExport struct {
	// Artifact name handed to the sink
	Artifact string
	Config   settings.MarkdownConfig
	Sink     sink.Sink
}

// FolderExport creates a folder export using the persisted folder options.
func (e *Exporter) FolderExport(ctx context.Context, target string) (*FolderExport, error) {
	cfg, err := settings.LoadFolder(ctx, e.store, e.logger)
	if err != nil {
		return nil, err
	}

	return &FolderExport{Target: target, Config: cfg}, nil
}

// ArchiveExport creates an archive export using the persisted archive options.
func (e *Exporter) ArchiveExport(ctx context.Context, target string) (*ArchiveExport, error) {
	cfg, err := settings.LoadArchive(ctx, e.store, e.logger)
	if err != nil {
		return nil, err
	}

	return &ArchiveExport{Target: target, Config: cfg}, nil
}

// MarkdownExport creates a Markdown export into s using the persisted options.
func (e *Exporter) MarkdownExport(ctx context.Context, artifact string, s sink.Sink) (*MarkdownExport, error) {
	cfg, err := settings.LoadMarkdown(ctx, e.store, e.logger)
	if err != nil {
		return nil, err
	}

	return &MarkdownExport{Artifact: artifact, Config: cfg, Sink: s}, nil
}

func (*FolderExport) Name() string {
	return "folder"
}

func (op *FolderExport) Run(ctx context.Context, e *Exporter) (*Result, error) {
	result := &Result{
		Operation: op.Name(),
		Artifact:  op.Target,
	}

	mods, err := e.selectMods(ctx, op.Config.Selection)
	if err != nil {
		return aborted(ctx, result, err)
	}
	result.Mods = len(mods)

	hardlinks := op.Config.Hardlinks
	if hardlinks && !e.linkable(mods, op.Target) {
		e.logger.Warn("Target '%s' is on another volume than the mods, copying instead of linking", op.Target)
		hardlinks = false
		result.HardlinksDisabled = true
	}

	p, err := e.buildPlan(ctx, mods, op.Config.Selection, op.Config.OverwriteExisting)
	if err != nil {
		return aborted(ctx, result, err)
	}

	engine, err := export.NewFolder(
		export.WithHardlinks(hardlinks),
		export.WithProgress(op.Progress),
		export.WithLogger(e.logger),
	)
	if err != nil {
		return nil, err
	}

	result.Outcome, err = engine.Execute(ctx, p, op.Target)
	return result, err
}

// linkable reports whether every mod folder shares the volume of target.
// Errors leave the decision to the link calls.
func (e *Exporter) linkable(mods []data.ModEntry, target string) bool {
	for _, mod := range mods {
		if mod.Separator || mod.Path == "" {
			continue
		}

		same, err := e.sameVolume(mod.Path, target)
		if err != nil {
			e.logger.Debug("Unable to compare volumes of '%s' and '%s': %v", mod.Path, target, err)
			continue
		}
		if !same {
			return false
		}
	}

	return true
}

func (*ArchiveExport) Name() string {
	return "archive"
}

func (op *ArchiveExport) Run(ctx context.Context, e *Exporter) (*Result, error) {
	result := &Result{
		Operation: op.Name(),
		Artifact:  op.Target,
	}

	mods, err := e.selectMods(ctx, op.Config.Selection)
	if err != nil {
		return aborted(ctx, result, err)
	}
	result.Mods = len(mods)

	p, err := e.buildPlan(ctx, mods, op.Config.Selection, true)
	if err != nil {
		return aborted(ctx, result, err)
	}

	engine, err := export.NewArchive(
		export.WithCodec(op.Config.Codec),
		export.WithLevel(op.Config.Level),
		export.WithProgress(op.Progress),
		export.WithLogger(e.logger),
	)
	if err != nil {
		return nil, err
	}

	result.Outcome, err = engine.Execute(ctx, p, op.Target)
	if err != nil || result.Outcome.Status != data.StatusCompleted || op.Upload == nil || p.Empty() {
		return result, err
	}

	if err := upload(ctx, op.Upload, op.Target); err != nil {
		return result, err
	}
	result.Uploaded = op.Upload.Name()

	return result, nil
}

// aborted reports a run cancelled before its engine started as an aborted
// outcome with nothing done. Any other error is returned unchanged.
func aborted(ctx context.Context, result *Result, err error) (*Result, error) {
	if ctx.Err() == nil || !errors.Is(err, ctx.Err()) {
		return nil, err
	}

	result.Outcome = data.NewOutcome(nil)
	result.Outcome.Status = data.StatusAborted
	return result, nil
}

func upload(ctx context.Context, s sink.Sink, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	if err := s.Write(ctx, filepath.Base(path), file, info.Size()); err != nil {
		return fmt.Errorf("failed to upload '%s' to %s: %w", path, s.Name(), err)
	}

	return nil
}

func (*MarkdownExport) Name() string {
	return "markdown"
}

func (op *MarkdownExport) Run(ctx context.Context, e *Exporter) (*Result, error) {
	if op.Sink == nil {
		return nil, fmt.Errorf("%w: missing markdown sink", data.ErrInvalid)
	}

	mods, err := e.source.ActiveMods(ctx, false, false)
	if err != nil {
		return nil, err
	}
	if len(mods) == 0 {
		return nil, data.ErrEmptySelection
	}

	template := op.Config.URLTemplate
	if template == "" {
		template = markdown.NexusTemplate(op.Config.Game)
	}

	if err := markdown.Write(ctx, markdown.Render(mods, template), op.Sink, op.Artifact); err != nil {
		return nil, err
	}

	return &Result{
		Operation: op.Name(),
		Mods:      len(mods),
		Artifact:  op.Sink.Name(),
	}, nil
}
