package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func speciesCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "species",
		Short: "List the species catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			catalog := rt.engine.Species()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), catalog)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPRIMARY REGION\tREGIONS")
			for _, sp := range catalog {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", sp.ID, sp.CommonName, sp.PrimaryRegion, strings.Join(sp.Regions, ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}
