package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/appengine-ltd/wildcast/internal/store"
)

func importCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <pack.yaml>...",
		Short: "Validate rule and model packs and write them into the sqlite store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := store.LoadPacks(args)
			if err != nil {
				return err
			}
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.Close()
			if rt.cfg.Store.Driver != "sqlite" {
				return fmt.Errorf("import needs store.driver=sqlite, got %q", rt.cfg.Store.Driver)
			}

			res, err := store.ApplyPack(cmd.Context(), rt.store, pack)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rules (%d new, %d updated) and %d models into %s\n",
				res.RulesCreated+res.RulesUpdated, res.RulesCreated, res.RulesUpdated, res.ModelsSaved, rt.cfg.Store.DSN)
			return nil
		},
	}
}

func exportCmd(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the store's custom rules and models as a pack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			pack, err := store.ExportPack(cmd.Context(), rt.store)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return store.EncodePack(cmd.OutOrStdout(), pack)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := store.EncodePack(f, pack); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}
