// Package export materializes export plans onto a target folder or into a
// single zip archive.
//
// Engines run synchronously and check for cancellation once per plan entry.
// A target left behind by a cancelled or failed run is never rolled back.
package export

import (
	"fmt"

	"github.com/mwantia/modexport/data"
	"github.com/mwantia/modexport/log"
)

// DefaultLevel selects the default compression level of a codec.
const DefaultLevel = -1

// ProgressFunc is called after every handled plan entry.
type ProgressFunc func(done, total int, entry data.PlanEntry)

type EngineOptions struct {
	Hardlinks bool
	Codec     data.Codec
	Level     int
	Progress  ProgressFunc
	Logger    *log.Logger
}

type EngineOption func(*EngineOptions) error

func newDefaultEngineOptions() *EngineOptions {
	return &EngineOptions{
		Codec:  data.DefaultCodec,
		Level:  DefaultLevel,
		Logger: log.Discard(),
	}
}

func applyEngineOptions(opts []EngineOption) (*EngineOptions, error) {
	options := newDefaultEngineOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	return options, nil
}

// WithHardlinks links files to their source instead of copying them.
// Only used by the folder engine.
func WithHardlinks(enabled bool) EngineOption {
	return func(opts *EngineOptions) error {
		opts.Hardlinks = enabled
		return nil
	}
}

// WithCodec selects the compression method of archive members.
func WithCodec(codec data.Codec) EngineOption {
	return func(opts *EngineOptions) error {
		switch codec {
		case data.CodecStored, data.CodecDeflate, data.CodecBzip2, data.CodecLZMA:
			opts.Codec = codec
			return nil
		}

		return fmt.Errorf("%w: unknown codec %d", data.ErrInvalid, codec)
	}
}

// WithLevel sets the compression level. DefaultLevel selects the codec default.
// Levels outside the codec range fall back to the default when the engine is created.
func WithLevel(level int) EngineOption {
	return func(opts *EngineOptions) error {
		opts.Level = level
		return nil
	}
}

func WithProgress(fn ProgressFunc) EngineOption {
	return func(opts *EngineOptions) error {
		opts.Progress = fn
		return nil
	}
}

func WithLogger(logger *log.Logger) EngineOption {
	return func(opts *EngineOptions) error {
		if logger != nil {
			opts.Logger = logger
		}
		return nil
	}
}
