package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mods",
		Short: "List the mods of the profile",
		Long: `List the active mods of the profile, lowest priority first.

With --all every modlist.txt entry is listed in file order together with its state.`,
		Args: cobra.NoArgs,
	}

	cmd.RunE = a.runE(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()

		instance, err := a.openInstance(ctx)
		if err != nil {
			return err
		}

		if all, _ := flags.GetBool("all"); all {
			entries, err := instance.List(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, entry := range entries {
				fmt.Fprintf(w, "%s\t%s\n", entry.State, entry.Name)
			}
			return w.Flush()
		}

		reverse, _ := flags.GetBool("reverse")
		separators, _ := flags.GetBool(flagSeparators)

		mods, err := instance.ActiveMods(ctx, reverse, separators)
		if err != nil {
			return err
		}

		if asJSON, _ := flags.GetBool("json"); asJSON {
			encoder := json.NewEncoder(a.stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(mods)
		}

		w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		for _, mod := range mods {
			if mod.Separator {
				fmt.Fprintf(w, "-- %s --\t\n", mod.Name)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\n", mod.Name, mod.Version)
		}
		return w.Flush()
	})

	flags := cmd.Flags()
	flags.Bool("all", false, "list every entry with its state, including disabled mods")
	flags.Bool("reverse", false, "list the highest priority first")
	flags.Bool(flagSeparators, false, "include separators")
	flags.Bool("json", false, "print the mods as JSON")

	return cmd
}
