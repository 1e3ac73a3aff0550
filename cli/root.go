package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwantia/modexport"
	"github.com/mwantia/modexport/log"
	"github.com/mwantia/modexport/modlist"
	"github.com/mwantia/modexport/settings"
	"github.com/mwantia/modexport/settings/backend"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagConfig   = "config"
	flagInstance = "instance"
	flagProfile  = "profile"
	flagSettings = "settings"
	flagLogLevel = "log-level"
	flagLogFile  = "log-file"
	flagLogJSON  = "log-json"
)

// Name of the settings database created inside the instance directory
const defaultSettingsFile = "modexport.db"

var errMissingInstance = errors.New("missing instance directory, set --instance or MODEXPORT_INSTANCE")

// app carries the state shared by all commands of one invocation.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer

	logger *log.Logger
	store  settings.Store
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		stdout: stdout,
		stderr: stderr,
		logger: log.Discard(),
	}

	root := &cobra.Command{
		Use:   "modexport",
		Short: "Export the active mods of a Mod Organizer profile",
		Long: `modexport exports the enabled mods of a Mod Organizer profile into a
folder, a zip archive or a Markdown list.

Files of mods with a higher priority replace files of lower priority mods,
exactly as the game sees them. Export options are persisted per operation
in a settings store, next to the instance by default.

Flags can also be set in ./modexport.yaml or with MODEXPORT_ prefixed
environment variables, e.g. MODEXPORT_INSTANCE.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String(flagConfig, "", "config file (default is ./modexport.yaml)")
	flags.StringP(flagInstance, "i", "", "Mod Organizer instance directory")
	flags.StringP(flagProfile, "p", modlist.DefaultProfile, "profile whose mod list is exported")
	flags.String(flagSettings, "", "settings store address (default is sqlite://<instance>/"+defaultSettingsFile+")")
	flags.String(flagLogLevel, "info", "log level (debug, info, warn, error)")
	flags.String(flagLogFile, "", "additionally write logs into a rotated file")
	flags.Bool(flagLogJSON, false, "write logs as JSON")

	root.AddCommand(
		newFolderCommand(a),
		newZipCommand(a),
		newMarkdownCommand(a),
		newModsCommand(a),
		newSettingsCommand(a),
	)

	return root
}

// init reads the config file, environment and flags into viper and sets up logging.
func (a *app) init(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	a.v.SetEnvPrefix("MODEXPORT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if path := a.v.GetString(flagConfig); path != "" {
		a.v.SetConfigFile(path)
	} else {
		a.v.SetConfigName("modexport")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(dir, "modexport"))
		}
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	level, err := log.ParseLevel(a.v.GetString(flagLogLevel))
	if err != nil {
		return err
	}

	// Colors and rotation only make sense on the real terminal
	if a.stderr == os.Stderr {
		a.logger = log.NewLogger("modexport", level, a.v.GetString(flagLogFile), false)
	} else {
		a.logger = log.NewWriterLogger("modexport", level, a.stderr)
	}
	a.logger.JSON = a.v.GetBool(flagLogJSON)

	return nil
}

// runE wraps fn so the settings store is closed on every exit path.
func (a *app) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.close(cmd.Context())
		return fn(cmd, args)
	}
}

func (a *app) close(ctx context.Context) {
	if a.store == nil {
		return
	}

	if err := a.store.Close(context.WithoutCancel(ctx)); err != nil {
		a.logger.Warn("Failed to close settings store: %v", err)
	}
	a.store = nil
}

func (a *app) openStore(ctx context.Context) (settings.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	address := a.v.GetString(flagSettings)
	if address == "" {
		root := a.v.GetString(flagInstance)
		if root == "" {
			return nil, errMissingInstance
		}
		address = "sqlite://" + filepath.Join(root, defaultSettingsFile)
	}

	store, err := backend.Parse(address)
	if err != nil {
		return nil, err
	}

	if err := store.Open(ctx); err != nil {
		return nil, fmt.Errorf("failed to open %s settings store: %w", store.Name(), err)
	}
	a.logger.Debug("Opened %s settings store", store.Name())

	a.store = store
	return store, nil
}

func (a *app) openInstance(ctx context.Context) (*modlist.Instance, error) {
	root := a.v.GetString(flagInstance)
	if root == "" {
		return nil, errMissingInstance
	}

	instance := modlist.NewInstance(root, a.v.GetString(flagProfile), a.logger)
	if err := instance.Open(ctx); err != nil {
		return nil, fmt.Errorf("failed to open instance '%s' with profile '%s': %w", root, instance.Profile(), err)
	}

	return instance, nil
}

func (a *app) openExporter(ctx context.Context) (*modexport.Exporter, error) {
	instance, err := a.openInstance(ctx)
	if err != nil {
		return nil, err
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	return modexport.New(instance, modexport.WithLogger(a.logger), modexport.WithStore(store))
}
