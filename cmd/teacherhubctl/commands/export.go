package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/teacherhub-gateway/internal/service"
)

func exportCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:       "export [recruiters|interviews]",
		Short:     "Export an admin list as CSV, PDF or a CSV data URI",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"recruiters", "interviews"},
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := service.ParseResource(args[0])
			if err != nil {
				return err
			}
			token, err := requireToken(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			result, err := appCtx.exports.Export(cmd.Context(), token, resource, format)
			if err != nil {
				return err
			}

			if format == service.ExportFormatDataURI {
				fmt.Fprintln(cmd.OutOrStdout(), result.DataURI)
				return nil
			}
			if output == "" {
				output = result.Filename
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(result.Data)
				return err
			}
			if err := os.WriteFile(output, result.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", result.Rows, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", service.ExportFormatCSV, "csv, pdf or datauri")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: generated name)")
	return cmd
}
