package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// getOutputFormat returns the effective output format from the root command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output != "" && output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
	}
	return nil
}

// isTerminal reports whether w is an interactive terminal. Piped output
// defaults to JSON.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printTable writes headers and rows as aligned columns. Ragged rows are
// padded with empty cells.
func printTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	width := len(headers)
	for _, r := range rows {
		width = max(width, len(r))
	}
	writeRow := func(cells []string, upper bool) {
		out := make([]string, width)
		for i := range out {
			if i < len(cells) {
				out[i] = cells[i]
				if upper {
					out[i] = strings.ToUpper(out[i])
				}
			}
		}
		_, _ = fmt.Fprintln(tw, strings.Join(out, "\t"))
	}
	writeRow(headers, true)
	for _, r := range rows {
		writeRow(r, false)
	}
	return tw.Flush()
}
