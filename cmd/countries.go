package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mavmaso/ficherors/internal/phone"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List supported destination countries",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tPATTERN\tTEMPLATE")
		for _, r := range phone.DefaultRules().All() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Code, r.Validate, r.Template)
		}
		return w.Flush()
	},
}
