package main

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/mwantia/modexport/data"
	"github.com/mwantia/modexport/settings"
	"github.com/spf13/cobra"
)

func newSettingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change persisted export options",
		Long: `Inspect and change the export options persisted per operation.

Scopes are folder, archive and markdown. Values are stored with their kind,
which is guessed from the value unless --kind is given.`,
	}

	cmd.AddCommand(
		newSettingsListCommand(a),
		newSettingsGetCommand(a),
		newSettingsSetCommand(a),
		newSettingsUnsetCommand(a),
	)

	return cmd
}

func validateKey(scope, key string) error {
	keys := settings.Keys(scope)
	if keys == nil {
		return fmt.Errorf("%w: unknown scope '%s', expected one of %v", data.ErrInvalid, scope, settings.Scopes())
	}
	if key != "" && !slices.Contains(keys, key) {
		return fmt.Errorf("%w: unknown key '%s' in scope '%s', expected one of %v", data.ErrInvalid, key, scope, keys)
	}

	return nil
}

func newSettingsListCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [scope]",
		Short: "List persisted options",
		Args:  cobra.MaximumNArgs(1),
	}

	cmd.RunE = a.runE(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		scopes := settings.Scopes()
		if len(args) == 1 {
			if err := validateKey(args[0], ""); err != nil {
				return err
			}
			scopes = args[:1]
		}

		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		for _, scope := range scopes {
			values, err := store.List(ctx, scope)
			if err != nil {
				return err
			}

			for _, key := range slices.Sorted(maps.Keys(values)) {
				value := values[key]
				fmt.Fprintf(w, "%s/%s\t%s\t%s\n", scope, key, value.Kind, value)
			}
		}

		return w.Flush()
	})

	return cmd
}

func newSettingsGetCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <scope> <key>",
		Short: "Print one persisted option",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = a.runE(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		scope, key := args[0], args[1]

		if err := validateKey(scope, key); err != nil {
			return err
		}

		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}

		value, ok, err := store.Get(ctx, scope, key)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("option '%s/%s' is not set", scope, key)
		}

		fmt.Fprintln(a.stdout, value)
		return nil
	})

	return cmd
}

func newSettingsSetCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <scope> <key> <value>",
		Short: "Persist one option",
		Args:  cobra.ExactArgs(3),
	}

	cmd.RunE = a.runE(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		scope, key, raw := args[0], args[1], args[2]

		if err := validateKey(scope, key); err != nil {
			return err
		}

		value := settings.Infer(raw)
		if kind, _ := cmd.Flags().GetString("kind"); kind != "" {
			var err error
			if value, err = settings.NewValue(kind, raw); err != nil {
				return err
			}
		}

		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}

		if err := store.Set(ctx, scope, key, value); err != nil {
			return err
		}

		a.logger.Debug("Set '%s/%s' to %s '%s'", scope, key, value.Kind, value)
		return nil
	})

	cmd.Flags().String("kind", "", "value kind (string, bool, int), guessed when empty")

	return cmd
}

func newSettingsUnsetCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset <scope> <key>",
		Short: "Remove one option, restoring its default",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = a.runE(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		scope, key := args[0], args[1]

		if err := validateKey(scope, key); err != nil {
			return err
		}

		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}

		return store.Delete(ctx, scope, key)
	})

	return cmd
}
