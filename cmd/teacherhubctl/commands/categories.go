package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List class categories and their subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := appCtx.catalog.ClassCategories(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tSUBJECT ID\tSUBJECT")
			for _, category := range categories {
				if len(category.Subjects) == 0 {
					fmt.Fprintf(w, "%d\t%s\t-\t-\n", category.ID, category.Name)
					continue
				}
				for _, subject := range category.Subjects {
					fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", category.ID, category.Name, subject.ID, subject.Name)
				}
			}
			return w.Flush()
		},
	}
}
