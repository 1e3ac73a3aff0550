package modexport

import (
	"github.com/mwantia/modexport/log"
	"github.com/mwantia/modexport/settings"
)

type ExporterOptions struct {
	LogLevel      log.LogLevel
	LogFile       string
	LogJSON       bool
	NoTerminalLog bool
	Logger        *log.Logger
	Store         settings.Store
}

type ExporterOption func(*ExporterOptions) error

func newDefaultExporterOptions() *ExporterOptions {
	return &ExporterOptions{
		LogLevel: log.Info,
	}
}

func WithLogLevel(logLevel log.LogLevel) ExporterOption {
	return func(opts *ExporterOptions) error {
		opts.LogLevel = logLevel
		return nil
	}
}

func WithoutTerminalLog() ExporterOption {
	return func(opts *ExporterOptions) error {
		opts.NoTerminalLog = true
		return nil
	}
}

func WithLogFile(logFile string) ExporterOption {
	return func(opts *ExporterOptions) error {
		opts.LogFile = logFile
		return nil
	}
}

func WithJSONLog() ExporterOption {
	return func(opts *ExporterOptions) error {
		opts.LogJSON = true
		return nil
	}
}

// WithLogger replaces the logger built from the other log options.
func WithLogger(logger *log.Logger) ExporterOption {
	return func(opts *ExporterOptions) error {
		opts.Logger = logger
		return nil
	}
}

// WithStore sets the store persisted export options are read from.
// Without a store every operation uses the documented defaults.
func WithStore(store settings.Store) ExporterOption {
	return func(opts *ExporterOptions) error {
		opts.Store = store
		return nil
	}
}
