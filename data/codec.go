package data

import (
	"fmt"
	"strings"
)

// Codec selects the compression method used for archive members.
type Codec int

const (
	CodecStored Codec = iota
	CodecDeflate
	CodecBzip2
	CodecLZMA
)

// DefaultCodec is used whenever a persisted codec name is unknown.
const DefaultCodec = CodecDeflate

// Codecs lists every supported codec in display order.
func Codecs() []Codec {
	return []Codec{CodecStored, CodecDeflate, CodecBzip2, CodecLZMA}
}

func (c Codec) String() string {
	switch c {
	case CodecStored:
		return "stored"
	case CodecDeflate:
		return "deflate"
	case CodecBzip2:
		return "bzip2"
	case CodecLZMA:
		return "lzma"
	default:
		return "unknown"
	}
}

// Method returns the zip compression method id of c.
func (c Codec) Method() uint16 {
	switch c {
	case CodecDeflate:
		return 8
	case CodecBzip2:
		return 12
	case CodecLZMA:
		return 14
	default:
		return 0
	}
}

// ParseCodec parses a codec name. Both short names ("deflate") and
// the ZIP_* constant names ("ZIP_DEFLATED") are accepted, case-insensitive.
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "stored", "store", "zip_stored":
		return CodecStored, nil
	case "deflate", "deflated", "zip_deflated":
		return CodecDeflate, nil
	case "bzip2", "zip_bzip2":
		return CodecBzip2, nil
	case "lzma", "zip_lzma":
		return CodecLZMA, nil
	}

	return DefaultCodec, fmt.Errorf("%w: unknown compression '%s'", ErrInvalidSetting, name)
}

// LevelRange returns the valid level range for c.
// Codecs without levels return ok=false.
func (c Codec) LevelRange() (lo, hi int, ok bool) {
	switch c {
	case CodecDeflate:
		return 0, 9, true
	case CodecBzip2:
		return 1, 9, true
	default:
		return 0, 0, false
	}
}

// ExportType selects between the merged virtual tree and one folder per mod.
type ExportType string

const (
	ExportModContent ExportType = "mod-content" // Merge all mods into one virtual tree
	ExportModFolder  ExportType = "mod-folder"  // Keep every mod in its own folder
)

// DefaultExportType is used whenever a persisted export type is unknown.
const DefaultExportType = ExportModContent

func ParseExportType(name string) (ExportType, error) {
	switch ExportType(strings.ToLower(strings.TrimSpace(name))) {
	case ExportModContent:
		return ExportModContent, nil
	case ExportModFolder:
		return ExportModFolder, nil
	}

	return DefaultExportType, fmt.Errorf("%w: unknown export type '%s'", ErrInvalidSetting, name)
}

// SeparateFolders reports whether every mod is exported below its own folder.
func (t ExportType) SeparateFolders() bool {
	return t == ExportModFolder
}
