package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mwantia/modexport/data"
)

// File writes artifacts into a directory, replacing existing files.
type File struct {
	dir string
}

func NewFile(dir string) *File {
	return &File{
		dir: filepath.Clean(dir),
	}
}

func (*File) Name() string {
	return "file"
}

// Write stores r as name below the sink directory. name may be absolute,
// in which case the directory is ignored. The content is written to a
// temporary file first and renamed into place once complete.
func (f *File) Write(ctx context.Context, name string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.dir, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return mapError(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return mapError(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return mapError(err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return mapError(err)
	}

	return mapError(os.Rename(tmp.Name(), path))
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", data.ErrNotExist, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", data.ErrPermission, err)
	default:
		return fmt.Errorf("%w: %w", data.ErrFilesystem, err)
	}
}
