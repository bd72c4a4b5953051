package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func lookupCmd() *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "lookup [pincode]",
		Short: "Resolve a pincode into state, city and areas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location, err := appCtx.locations.Resolve(cmd.Context(), args[0], state)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pincode: %s\n", location.Pincode)
			fmt.Fprintf(out, "State:   %s\n", location.State)
			fmt.Fprintf(out, "City:    %s\n", location.City)
			fmt.Fprintf(out, "Areas:   %s\n", strings.Join(location.Areas, ", "))
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "route the lookup through the state-specific directory")
	return cmd
}
