package sink

import (
	"context"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
)

// Clipboard copies text artifacts to the system clipboard. The name is ignored.
type Clipboard struct{}

func NewClipboard() *Clipboard {
	return &Clipboard{}
}

func (*Clipboard) Name() string {
	return "clipboard"
}

// Available reports whether a clipboard utility is usable on this system.
func (*Clipboard) Available() bool {
	return !clipboard.Unsupported
}

func (*Clipboard) Write(ctx context.Context, name string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}

	text, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	return clipboard.WriteAll(string(text))
}
