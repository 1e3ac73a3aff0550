package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mwantia/modexport/data"
	"github.com/mwantia/modexport/log"
)

// Folder writes a plan onto a target directory by copying or hardlinking
// every file from its source.
type Folder struct {
	hardlinks bool
	progress  ProgressFunc
	logger    *log.Logger
}

func NewFolder(opts ...EngineOption) (*Folder, error) {
	options, err := applyEngineOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Folder{
		hardlinks: options.Hardlinks,
		progress:  options.Progress,
		logger:    options.Logger.Named("folder"),
	}, nil
}

// Hardlinks reports whether files are linked instead of copied.
func (f *Folder) Hardlinks() bool {
	return f.hardlinks
}

// Execute writes every plan entry below targetRoot, in plan order.
//
// A cancelled context stops the run before the next entry and returns an
// aborted outcome without error. Any filesystem error stops the run and is
// returned as *data.ExportError next to a failed outcome.
// An empty plan never touches the filesystem.
func (f *Folder) Execute(ctx context.Context, plan *data.Plan, targetRoot string) (*data.Outcome, error) {
	outcome := data.NewOutcome(plan)
	if plan.Empty() {
		f.logger.Debug("Nothing to export into '%s'", targetRoot)
		return outcome, nil
	}

	for i, entry := range plan.Entries {
		if err := ctx.Err(); err != nil {
			outcome.Status = data.StatusAborted
			f.logger.Info("Export into '%s' cancelled after %d of %d entries", targetRoot, outcome.Done, outcome.Total)
			return outcome, nil
		}

		target := filepath.Join(targetRoot, filepath.FromSlash(entry.Path))
		if op, err := f.apply(entry, target, outcome); err != nil {
			outcome.Status = data.StatusFailed
			return outcome, &data.ExportError{
				Op:        op,
				Path:      entry.Path,
				Completed: i,
				Remaining: outcome.Total - i,
				Err:       err,
			}
		}

		outcome.Done++
		if f.progress != nil {
			f.progress(outcome.Done, outcome.Total, entry)
		}
	}

	return outcome, nil
}

// apply handles one entry and returns the failing operation name on error.
func (f *Folder) apply(entry data.PlanEntry, target string, outcome *data.Outcome) (string, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "mkdir", filesystemError(err)
	}

	info, err := os.Lstat(target)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "stat", filesystemError(err)
	}

	if exists && entry.Policy == data.PolicyPreserve {
		f.logger.Debug("Preserved existing '%s'", entry.Path)
		outcome.Preserved++
		outcome.PreservedPaths = append(outcome.PreservedPaths, entry.Path)
		return "", nil
	}

	if entry.Action == data.ActionCreateDirectory {
		if exists && info.IsDir() {
			outcome.Written++
			return "", nil
		}
		if exists {
			if err := os.Remove(target); err != nil {
				return "remove", filesystemError(err)
			}
		}
		if err := os.Mkdir(target, 0o755); err != nil {
			return "mkdir", filesystemError(err)
		}

		f.logger.Debug("Created directory '%s'", entry.Path)
		outcome.Written++
		if exists {
			outcome.Overwritten++
		}
		return "", nil
	}

	// A hardlink cannot replace an existing path, so the target always goes first.
	if exists {
		if err := os.Remove(target); err != nil {
			return "remove", filesystemError(err)
		}
	}

	if f.hardlinks {
		if err := os.Link(entry.Source, target); err != nil {
			return "link", filesystemError(err)
		}
		f.logger.Debug("Linked '%s' from '%s'", entry.Path, entry.Source)
	} else {
		n, err := copyFile(entry.Source, target)
		if err != nil {
			return "copy", filesystemError(err)
		}
		outcome.Bytes += uint64(n)
		f.logger.Debug("Copied '%s' from '%s'", entry.Path, entry.Source)
	}

	outcome.Written++
	if exists {
		outcome.Overwritten++
	}
	return "", nil
}

// copyFile copies src to a new file dst, keeping permission bits and
// modification time. A partially written dst is removed again.
func copyFile(src, dst string) (n int64, err error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: source '%s' is a directory", data.ErrInvalid, src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			os.Remove(dst)
		}
	}()

	n, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, err
	}

	// The umask may have stripped bits from the create mode.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return n, err
	}

	mtime := info.ModTime()
	if err := os.Chtimes(dst, mtime, mtime); err != nil {
		return n, err
	}

	return n, nil
}

// filesystemError classifies err as a cross volume or a generic filesystem error,
// keeping the original error in the chain.
func filesystemError(err error) error {
	if IsCrossVolume(err) {
		return fmt.Errorf("%w: %w", data.ErrCrossVolume, err)
	}

	return fmt.Errorf("%w: %w", data.ErrFilesystem, err)
}
