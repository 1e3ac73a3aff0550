package modlist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/mwantia/modexport/data"
	"github.com/mwantia/modexport/log"
)

const (
	modsDir      = "mods"
	profilesDir  = "profiles"
	overwriteDir = "overwrite"
	listFile     = "modlist.txt"
)

// DefaultProfile is the profile Mod Organizer creates for new instances.
const DefaultProfile = "Default"

// Instance reads mods from a Mod Organizer instance:
//
//	<root>/mods/<name>/...
//	<root>/profiles/<profile>/modlist.txt
//	<root>/overwrite/...
type Instance struct {
	mu      sync.RWMutex
	root    string
	profile string
	logger  *log.Logger
}

func NewInstance(root, profile string, logger *log.Logger) *Instance {
	if logger == nil {
		logger = log.Discard()
	}

	return &Instance{
		root:    filepath.Clean(root),
		profile: profile,
		logger:  logger.Named("modlist"),
	}
}

// Open verifies that the instance and its profile exist.
func (i *Instance) Open(ctx context.Context) error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	info, err := os.Stat(filepath.Join(i.root, modsDir))
	if err != nil {
		return mapError(err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: '%s' is not a directory", data.ErrInvalid, info.Name())
	}

	if _, err := os.Stat(i.listPath()); err != nil {
		return mapError(err)
	}

	return nil
}

// Root returns the instance directory.
func (i *Instance) Root() string {
	return i.root
}

// ModsPath returns the directory holding all mod folders.
func (i *Instance) ModsPath() string {
	return filepath.Join(i.root, modsDir)
}

// Profile returns the name of the profile whose mod list is read.
func (i *Instance) Profile() string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return i.profile
}

// SetProfile switches to another profile for subsequent queries.
func (i *Instance) SetProfile(profile string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.profile = profile
}

func (i *Instance) listPath() string {
	return filepath.Join(i.root, profilesDir, i.profile, listFile)
}

// List returns the raw modlist.txt entries, highest priority first.
func (i *Instance) List(ctx context.Context) ([]ListEntry, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return i.list()
}

func (i *Instance) list() ([]ListEntry, error) {
	file, err := os.Open(i.listPath())
	if err != nil {
		return nil, mapError(err)
	}
	defer file.Close()

	entries, err := ParseList(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse '%s': %w", i.listPath(), err)
	}

	return entries, nil
}

func (i *Instance) ActiveMods(ctx context.Context, reverse, includeSeparators bool) ([]data.ModEntry, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	entries, err := i.list()
	if err != nil {
		return nil, err
	}

	// modlist.txt starts with the highest priority
	slices.Reverse(entries)

	mods := make([]data.ModEntry, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch {
		case entry.Separator():
			if !includeSeparators {
				continue
			}
			mods = append(mods, data.ModEntry{
				Name:      entry.Name,
				Path:      filepath.Join(i.root, modsDir, entry.Name),
				Separator: true,
				Tree:      data.NewStaticTree(),
			})
			continue
		case entry.State != StateEnabled:
			continue
		}

		mod, err := i.load(entry.Name, filepath.Join(i.root, modsDir, entry.Name), true)
		if err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}

	if reverse {
		slices.Reverse(mods)
	}

	i.logger.Debug("Found %d active mods in profile '%s'", len(mods), i.profile)
	return mods, nil
}

func (i *Instance) Mod(ctx context.Context, name string) (data.ModEntry, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return data.ModEntry{}, err
	}

	if name == data.OverwriteModName {
		return i.load(name, filepath.Join(i.root, overwriteDir), false)
	}

	return i.load(name, filepath.Join(i.root, modsDir, name), true)
}

func (i *Instance) load(name, dir string, withMeta bool) (data.ModEntry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return data.ModEntry{}, fmt.Errorf("%w: '%s'", data.ErrModNotFound, name)
		}
		return data.ModEntry{}, mapError(err)
	}
	if !info.IsDir() {
		return data.ModEntry{}, fmt.Errorf("%w: '%s' is not a directory", data.ErrModNotFound, name)
	}

	mod := data.ModEntry{
		Name: name,
		Path: dir,
		Tree: dirTree{root: dir},
	}

	if withMeta {
		meta, err := ReadMeta(dir)
		if err != nil {
			i.logger.Debug("No metadata for mod '%s': %v", name, err)
		}

		mod.Version = meta.Version
		mod.URL = meta.URL
		mod.NexusID = meta.NexusID
	}

	return mod, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", data.ErrNotExist, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", data.ErrPermission, err)
	default:
		return err
	}
}
