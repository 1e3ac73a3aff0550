// Package sink delivers finished export artifacts to their destination.
package sink

import (
	"context"
	"io"
)

// Sink receives one named artifact at a time.
// size is -1 when the length of r is not known in advance.
type Sink interface {
	Name() string
	Write(ctx context.Context, name string, r io.Reader, size int64) error
}
