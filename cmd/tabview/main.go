package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts viewOptions

	cmd := &cobra.Command{
		Use:   "tabview <file>",
		Short: "Decode a data file and print one page of it",
		Long: `Decode a CSV, Excel, or JSON file the way the chat file viewer does
and print one page of rows.

Examples:
  tabview sales.csv                  # first 50 rows
  tabview report.xlsx --page 2       # third page
  tabview export.dat --type json     # override the detected format
  tabview sales.csv --json           # page as JSON`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			opts.fileName = args[0]
			return render(cmd.OutOrStdout(), data, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.declaredType, "type", "t", "", "Declared type (csv, xlsx, xls, json, or a MIME type)")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 0, "Zero-based page index")
	cmd.Flags().IntVarP(&opts.pageSize, "page-size", "n", 0, "Rows per page (default 50)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Output the page as JSON")

	return cmd
}
