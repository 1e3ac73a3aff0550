package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mwantia/modexport"
	"github.com/mwantia/modexport/data"
	"github.com/mwantia/modexport/export"
	"github.com/mwantia/modexport/settings"
	"github.com/mwantia/modexport/sink"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	flagIncludeOverwrite  = "include-overwrite"
	flagSeparators        = "separators"
	flagType              = "type"
	flagFilter            = "filter"
	flagSave              = "save"
	flagProgress          = "progress"
	flagHardlinks         = "hardlinks"
	flagOverwriteExisting = "overwrite-existing"
	flagCodec             = "codec"
	flagLevel             = "level"
	flagUpload            = "upload"
	flagOutput            = "output"
	flagClipboard         = "clipboard"
	flagGame              = "game"
	flagURLTemplate       = "url-template"
)

func addSelectionFlags(flags *pflag.FlagSet) {
	flags.Bool(flagIncludeOverwrite, false, "append the overwrite folder with the highest priority")
	flags.Bool(flagSeparators, false, "include separators, ignored for mod-folder exports")
	flags.String(flagType, string(data.DefaultExportType), "mod-content merges all mods, mod-folder keeps one folder per mod")
	flags.StringArray(flagFilter, nil, "exclude paths matching a glob pattern (repeatable)")
	flags.Bool(flagSave, false, "persist the given options as new defaults")
	flags.Bool(flagProgress, false, "print every exported entry")
}

// applySelection overrides the persisted selection with explicitly set flags,
// config values or environment variables.
func (a *app) applySelection(sel *settings.Selection) error {
	if a.v.IsSet(flagIncludeOverwrite) {
		sel.IncludeOverwrite = a.v.GetBool(flagIncludeOverwrite)
	}
	if a.v.IsSet(flagSeparators) {
		sel.IncludeSeparators = a.v.GetBool(flagSeparators)
	}
	if a.v.IsSet(flagType) {
		exportType, err := data.ParseExportType(a.v.GetString(flagType))
		if err != nil {
			return err
		}
		sel.ExportType = exportType
	}
	if a.v.IsSet(flagFilter) {
		sel.Filter = strings.Join(a.v.GetStringSlice(flagFilter), "\n")
	}

	if sel.ExportType.SeparateFolders() {
		sel.IncludeSeparators = false
	}

	_, err := sel.Filters()
	return err
}

func (a *app) progress(cmd *cobra.Command) export.ProgressFunc {
	if enabled, _ := cmd.Flags().GetBool(flagProgress); !enabled {
		return nil
	}

	return func(done, total int, entry data.PlanEntry) {
		fmt.Fprintf(a.stderr, "[%d/%d] %s\n", done, total, entry.Path)
	}
}

// report prints the result of an export operation.
// An empty selection is informational and not treated as failure.
func (a *app) report(result *modexport.Result, err error) error {
	style := newStyles(a.stdout)

	if errors.Is(err, modexport.ErrEmptySelection) {
		fmt.Fprintln(a.stdout, style.notice.Render("No active mods to export"))
		return nil
	}
	if err != nil {
		return err
	}

	if result.HardlinksDisabled {
		fmt.Fprintln(a.stdout, style.notice.Render("Target is on another volume than the mods, files were copied instead of linked"))
	}
	if result.Outcome == nil {
		return nil
	}

	fmt.Fprintln(a.stdout, style.outcome(result.Outcome))
	for _, path := range result.Outcome.PreservedPaths {
		fmt.Fprintln(a.stdout, style.notice.Render("  preserved "+path))
	}
	for _, path := range result.Outcome.FilteredPaths {
		fmt.Fprintln(a.stdout, style.notice.Render("  filtered "+path))
	}
	if result.Uploaded != "" {
		fmt.Fprintf(a.stdout, "Uploaded %s to %s\n", filepath.Base(result.Artifact), result.Uploaded)
	}

	if result.Outcome.Status == data.StatusAborted {
		return fmt.Errorf("export into '%s' was cancelled", result.Artifact)
	}

	return nil
}

func newFolderCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder <target>",
		Short: "Copy or hardlink the active mods into a folder",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = a.runE(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		exporter, err := a.openExporter(ctx)
		if err != nil {
			return err
		}

		op, err := exporter.FolderExport(ctx, args[0])
		if err != nil {
			return err
		}

		if err := a.applySelection(&op.Config.Selection); err != nil {
			return err
		}
		if a.v.IsSet(flagHardlinks) {
			op.Config.Hardlinks = a.v.GetBool(flagHardlinks)
		}
		if a.v.IsSet(flagOverwriteExisting) {
			op.Config.OverwriteExisting = a.v.GetBool(flagOverwriteExisting)
		}

		if save, _ := cmd.Flags().GetBool(flagSave); save {
			if err := settings.SaveFolder(ctx, exporter.Store(), op.Config); err != nil {
				return err
			}
		}

		op.Progress = a.progress(cmd)
		return a.report(exporter.Run(ctx, op))
	})

	flags := cmd.Flags()
	addSelectionFlags(flags)
	flags.Bool(flagHardlinks, false, "hardlink files instead of copying them")
	flags.Bool(flagOverwriteExisting, true, "replace files already present in the target")

	return cmd
}

func newZipCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zip <archive>",
		Short: "Compress the active mods into a zip archive",
		Long: `Compress the active mods into a zip archive.

Supported codecs are stored, deflate (levels 0-9), bzip2 (levels 1-9) and lzma.
The finished archive can be uploaded to an S3 bucket with

  --upload s3://<host>/<bucket>/<prefix>?access_key=<key>&secret_key=<secret>`,
		Args: cobra.ExactArgs(1),
	}

	cmd.RunE = a.runE(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		exporter, err := a.openExporter(ctx)
		if err != nil {
			return err
		}

		op, err := exporter.ArchiveExport(ctx, args[0])
		if err != nil {
			return err
		}

		if err := a.applySelection(&op.Config.Selection); err != nil {
			return err
		}
		if a.v.IsSet(flagCodec) {
			codec, err := data.ParseCodec(a.v.GetString(flagCodec))
			if err != nil {
				return err
			}
			op.Config.Codec = codec
		}
		if a.v.IsSet(flagLevel) {
			op.Config.Level = a.v.GetInt(flagLevel)
		}

		if save, _ := cmd.Flags().GetBool(flagSave); save {
			if err := settings.SaveArchive(ctx, exporter.Store(), op.Config); err != nil {
				return err
			}
		}

		if address := a.v.GetString(flagUpload); address != "" {
			s3, err := sink.ParseS3Address(address)
			if err != nil {
				return err
			}
			if err := s3.Open(ctx); err != nil {
				return err
			}
			op.Upload = s3
		}

		op.Progress = a.progress(cmd)
		return a.report(exporter.Run(ctx, op))
	})

	flags := cmd.Flags()
	addSelectionFlags(flags)
	flags.String(flagCodec, data.DefaultCodec.String(), "compression codec (stored, deflate, bzip2, lzma)")
	flags.Int(flagLevel, export.DefaultLevel, "compression level, -1 uses the codec default")
	flags.String(flagUpload, "", "upload the finished archive to an S3 address")

	return cmd
}

func newMarkdownCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "markdown",
		Short: "Write the active mods as a Markdown list",
		Long: `Write the active mods as a Markdown list, linking every mod to its
download page. The list goes to stdout unless --output or --clipboard is set.

Mods without a custom URL are linked through --url-template, where {id} is
replaced by the Nexus mod id. Without a template the Nexus page of --game is used.`,
		Args: cobra.NoArgs,
	}

	cmd.RunE = a.runE(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			target   sink.Sink
			artifact = "modlist.md"
		)

		output := a.v.GetString(flagOutput)
		switch {
		case a.v.GetBool(flagClipboard):
			clipboard := sink.NewClipboard()
			if !clipboard.Available() {
				return fmt.Errorf("%w: no clipboard available on this system", data.ErrInvalid)
			}
			target = clipboard
		case output != "":
			target = sink.NewFile(filepath.Dir(output))
			artifact = filepath.Base(output)
		default:
			target = sink.NewWriter("stdout", a.stdout)
		}

		exporter, err := a.openExporter(ctx)
		if err != nil {
			return err
		}

		op, err := exporter.MarkdownExport(ctx, artifact, target)
		if err != nil {
			return err
		}

		if a.v.IsSet(flagGame) {
			op.Config.Game = strings.TrimSpace(a.v.GetString(flagGame))
		}
		if a.v.IsSet(flagURLTemplate) {
			op.Config.URLTemplate = a.v.GetString(flagURLTemplate)
		}

		if save, _ := cmd.Flags().GetBool(flagSave); save {
			if err := settings.SaveMarkdown(ctx, exporter.Store(), op.Config); err != nil {
				return err
			}
		}

		result, err := exporter.Run(ctx, op)
		if errors.Is(err, modexport.ErrEmptySelection) {
			return a.report(result, err)
		}
		if err != nil {
			return err
		}

		if target.Name() != "stdout" {
			fmt.Fprintf(a.stdout, "Wrote %d mods to %s\n", result.Mods, target.Name())
		}
		return nil
	})

	flags := cmd.Flags()
	flags.StringP(flagOutput, "o", "", "write the list into a file")
	flags.Bool(flagClipboard, false, "copy the list to the clipboard")
	flags.String(flagGame, "", "Nexus game domain used for mod links, e.g. skyrimspecialedition")
	flags.String(flagURLTemplate, "", "link template for mods with a Nexus id, {id} is replaced")
	flags.Bool(flagSave, false, "persist the given options as new defaults")
	cmd.MarkFlagsMutuallyExclusive(flagOutput, flagClipboard)

	return cmd
}
