package modexport

import "github.com/mwantia/modexport/data"

// Errors returned by export operations, re-exported for callers that only
// import the root package.
var (
	ErrEmptySelection = data.ErrEmptySelection
	ErrModNotFound    = data.ErrModNotFound
	ErrCrossVolume    = data.ErrCrossVolume
	ErrFilesystem     = data.ErrFilesystem
	ErrArchiveWrite   = data.ErrArchiveWrite
	ErrInvalidSetting = data.ErrInvalidSetting
)
