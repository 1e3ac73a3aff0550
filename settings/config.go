package settings

import (
	"context"
	"strings"

	"github.com/mwantia/modexport/data"
	"github.com/mwantia/modexport/log"
	"github.com/mwantia/modexport/resolve"
)

// Scopes group the settings of one export operation.
const (
	ScopeFolder   = "folder"
	ScopeArchive  = "archive"
	ScopeMarkdown = "markdown"
)

// Setting keys.
const (
	KeyExportOverwrite   = "export-overwrite"
	KeyExportSeparators  = "export-separators"
	KeyExportType        = "export-type"
	KeyFilter            = "filter"
	KeyHardlinks         = "hardlinks"
	KeyOverwriteExisting = "overwrite-existing"
	KeyCompression       = "compression"
	KeyCompressionLevel  = "compression-level"
	KeyGame              = "game"
	KeyURLTemplate       = "url-template"
)

// Scopes returns every known scope.
func Scopes() []string {
	return []string{ScopeFolder, ScopeArchive, ScopeMarkdown}
}

// Keys returns the keys read for scope, nil for unknown scopes.
func Keys(scope string) []string {
	common := []string{KeyExportOverwrite, KeyExportSeparators, KeyExportType, KeyFilter}

	switch scope {
	case ScopeFolder:
		return append(common, KeyHardlinks, KeyOverwriteExisting)
	case ScopeArchive:
		return append(common, KeyCompression, KeyCompressionLevel)
	case ScopeMarkdown:
		return []string{KeyGame, KeyURLTemplate}
	default:
		return nil
	}
}

// Selection holds the options deciding which mods and paths are exported.
type Selection struct {
	// Append the "overwrite" pseudo-mod with the highest priority
	IncludeOverwrite bool

	// Interleave separator markers, never set for mod-folder exports
	IncludeSeparators bool

	ExportType data.ExportType

	// Exclusion filters, one glob pattern per line
	Filter string
}

// Filters compiles the exclusion filters of s.
func (s Selection) Filters() (resolve.Filters, error) {
	return resolve.ParseFilters(s.Filter)
}

type FolderConfig struct {
	Selection

	Hardlinks         bool
	OverwriteExisting bool
}

type ArchiveConfig struct {
	Selection

	Codec data.Codec
	Level int
}

type MarkdownConfig struct {
	Game        string
	URLTemplate string
}

// DefaultSelection returns the selection used when nothing was persisted.
func DefaultSelection() Selection {
	return Selection{
		ExportType: data.DefaultExportType,
	}
}

func DefaultFolderConfig() FolderConfig {
	return FolderConfig{
		Selection:         DefaultSelection(),
		OverwriteExisting: true,
	}
}

func DefaultArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		Selection: DefaultSelection(),
		Codec:     data.DefaultCodec,
		Level:     -1,
	}
}

// reader reads typed values of one scope, falling back to defaults on
// missing or invalid values. Only store failures are returned as errors.
type reader struct {
	ctx    context.Context
	store  Store
	scope  string
	logger *log.Logger
	err    error
}

func newReader(ctx context.Context, store Store, scope string, logger *log.Logger) *reader {
	if logger == nil {
		logger = log.Discard()
	}

	return &reader{
		ctx:    ctx,
		store:  store,
		scope:  scope,
		logger: logger.Named("settings"),
	}
}

func (r *reader) get(key string) (Value, bool) {
	if r.err != nil {
		return Value{}, false
	}

	value, ok, err := r.store.Get(r.ctx, r.scope, key)
	if err != nil {
		r.err = err
		return Value{}, false
	}

	return value, ok
}

func (r *reader) fallback(key string, err error, def any) {
	r.logger.Warn("Invalid value for '%s/%s', using default '%v': %v", r.scope, key, def, err)
}

func (r *reader) boolean(key string, def bool) bool {
	value, ok := r.get(key)
	if !ok {
		return def
	}

	b, err := value.AsBool()
	if err != nil {
		r.fallback(key, err, def)
		return def
	}

	return b
}

func (r *reader) integer(key string, def int) int {
	value, ok := r.get(key)
	if !ok {
		return def
	}

	i, err := value.AsInt()
	if err != nil {
		r.fallback(key, err, def)
		return def
	}

	return i
}

func (r *reader) text(key string, def string) string {
	value, ok := r.get(key)
	if !ok {
		return def
	}

	s, err := value.AsString()
	if err != nil {
		r.fallback(key, err, def)
		return def
	}

	return s
}

func (r *reader) selection() Selection {
	s := DefaultSelection()

	s.IncludeOverwrite = r.boolean(KeyExportOverwrite, false)
	s.IncludeSeparators = r.boolean(KeyExportSeparators, false)

	exportType, err := data.ParseExportType(r.text(KeyExportType, string(data.DefaultExportType)))
	if err != nil {
		r.fallback(KeyExportType, err, data.DefaultExportType)
	}
	s.ExportType = exportType

	s.Filter = r.text(KeyFilter, "")
	if _, err := s.Filters(); err != nil {
		r.fallback(KeyFilter, err, "")
		s.Filter = ""
	}

	// Separators have no files of their own to put into a mod folder
	if s.ExportType.SeparateFolders() {
		s.IncludeSeparators = false
	}

	return s
}

func LoadFolder(ctx context.Context, store Store, logger *log.Logger) (FolderConfig, error) {
	r := newReader(ctx, store, ScopeFolder, logger)

	cfg := DefaultFolderConfig()
	cfg.Selection = r.selection()
	cfg.Hardlinks = r.boolean(KeyHardlinks, false)
	cfg.OverwriteExisting = r.boolean(KeyOverwriteExisting, true)

	return cfg, r.err
}

func LoadArchive(ctx context.Context, store Store, logger *log.Logger) (ArchiveConfig, error) {
	r := newReader(ctx, store, ScopeArchive, logger)

	cfg := DefaultArchiveConfig()
	cfg.Selection = r.selection()

	codec, err := data.ParseCodec(r.text(KeyCompression, data.DefaultCodec.String()))
	if err != nil {
		r.fallback(KeyCompression, err, data.DefaultCodec)
	}
	cfg.Codec = codec

	cfg.Level = r.integer(KeyCompressionLevel, -1)
	if lo, hi, ok := codec.LevelRange(); ok && cfg.Level != -1 && (cfg.Level < lo || cfg.Level > hi) {
		r.logger.Warn("Compression level %d is outside %d..%d for %s, using the default", cfg.Level, lo, hi, codec)
		cfg.Level = -1
	}

	return cfg, r.err
}

func LoadMarkdown(ctx context.Context, store Store, logger *log.Logger) (MarkdownConfig, error) {
	r := newReader(ctx, store, ScopeMarkdown, logger)

	cfg := MarkdownConfig{
		Game:        strings.TrimSpace(r.text(KeyGame, "")),
		URLTemplate: r.text(KeyURLTemplate, ""),
	}

	return cfg, r.err
}

func saveSelection(ctx context.Context, store Store, scope string, s Selection) error {
	values := map[string]Value{
		KeyExportOverwrite:  Bool(s.IncludeOverwrite),
		KeyExportSeparators: Bool(s.IncludeSeparators),
		KeyExportType:       String(string(s.ExportType)),
		KeyFilter:           String(s.Filter),
	}

	return setAll(ctx, store, scope, values)
}

func setAll(ctx context.Context, store Store, scope string, values map[string]Value) error {
	for key, value := range values {
		if err := store.Set(ctx, scope, key, value); err != nil {
			return err
		}
	}

	return nil
}

// SaveFolder persists the user selection of a folder export.
func SaveFolder(ctx context.Context, store Store, cfg FolderConfig) error {
	if err := saveSelection(ctx, store, ScopeFolder, cfg.Selection); err != nil {
		return err
	}

	return setAll(ctx, store, ScopeFolder, map[string]Value{
		KeyHardlinks:         Bool(cfg.Hardlinks),
		KeyOverwriteExisting: Bool(cfg.OverwriteExisting),
	})
}

// SaveArchive persists the user selection of an archive export.
func SaveArchive(ctx context.Context, store Store, cfg ArchiveConfig) error {
	if err := saveSelection(ctx, store, ScopeArchive, cfg.Selection); err != nil {
		return err
	}

	return setAll(ctx, store, ScopeArchive, map[string]Value{
		KeyCompression:      String(cfg.Codec.String()),
		KeyCompressionLevel: Int(cfg.Level),
	})
}

// SaveMarkdown persists the options of a Markdown export.
func SaveMarkdown(ctx context.Context, store Store, cfg MarkdownConfig) error {
	return setAll(ctx, store, ScopeMarkdown, map[string]Value{
		KeyGame:        String(cfg.Game),
		KeyURLTemplate: String(cfg.URLTemplate),
	})
}
