package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"duck-sheets/internal/preview"
)

func newPreviewCmd() *cobra.Command {
	var maxRows int

	cmd := &cobra.Command{
		Use:   "preview <file|->",
		Short: "Quick-parse comma-separated text without loading it",
		Long:  "Split a small comma-separated file into headers and rows. Quoted commas and embedded newlines are not supported.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			res := preview.Parse(string(raw))
			if maxRows > 0 && len(res.Rows) > maxRows {
				res.Rows = res.Rows[:maxRows]
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return printTable(cmd.OutOrStdout(), res.Headers, res.Rows)
		},
	}

	cmd.Flags().IntVar(&maxRows, "max-rows", 20, "Maximum rows to print (0 for all)")
	return cmd
}
