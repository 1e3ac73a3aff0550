package sink

import (
	"context"
	"io"
)

// Writer streams artifacts into an io.Writer such as stdout. The name is ignored.
type Writer struct {
	name string
	w    io.Writer
}

func NewWriter(name string, w io.Writer) *Writer {
	return &Writer{
		name: name,
		w:    w,
	}
}

func (w *Writer) Name() string {
	return w.name
}

func (w *Writer) Write(ctx context.Context, name string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := io.Copy(w.w, r)
	return err
}
