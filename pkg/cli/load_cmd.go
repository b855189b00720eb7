package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"duck-sheets/internal/domain"
	"duck-sheets/internal/staging"
)

func newLoadCmd(s *settings) *cobra.Command {
	var (
		name  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "load <file|uri>",
		Short: "Load a data file into a new DuckDB table",
		Long: `Load a local file or an s3://, gs:// or az:// object as a new dataset.

The DuckDB file is opened directly, so it must not be held by a running server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			if name == "" {
				base := source
				if i := strings.LastIndex(base, "/"); i >= 0 {
					base = base[i+1:]
				}
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}

			a, closeFn, err := openLocalApp(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer closeFn()

			var ds *domain.Dataset
			if staging.IsRemote(source) {
				ds, err = a.Importer.ImportPublicFile(cmd.Context(), s.User, domain.ImportRequest{
					PublicFileName: source,
					DatasetName:    name,
					RowLimit:       limit,
				})
			} else {
				var abs string
				if abs, err = filepath.Abs(source); err != nil {
					return err
				}
				ds, err = a.Importer.ImportLocalFile(cmd.Context(), s.User, name, abs, limit)
			}
			if err != nil {
				return err
			}

			full, err := a.Importer.GetDataset(cmd.Context(), ds.ID)
			if err != nil {
				return err
			}
			return printDataset(cmd, full)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Dataset name (default: file name without extension)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows to ingest (0 for all)")
	return cmd
}

func printDataset(cmd *cobra.Command, ds *domain.Dataset) error {
	if getOutputFormat(cmd) == "json" {
		cols := make([]map[string]any, len(ds.Columns))
		for i, c := range ds.Columns {
			cols[i] = map[string]any{
				"name":        c.Name,
				"storageName": c.StorageName,
				"type":        c.Type,
				"position":    c.Position,
			}
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":         ds.ID,
			"name":       ds.Name,
			"createdBy":  ds.CreatedBy,
			"sourceFile": ds.SourceFile,
			"createdAt":  ds.CreatedAt,
			"rowCount":   ds.RowCount,
			"columns":    cols,
		})
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Dataset %s (%s)\nsource: %s\nrows:   %d\n\n", ds.Name, ds.ID, ds.SourceFile, ds.RowCount)
	rows := make([][]string, len(ds.Columns))
	for i, c := range ds.Columns {
		rows[i] = []string{strconv.Itoa(c.Position), c.Name, c.StorageName, c.Type}
	}
	return printTable(out, []string{"#", "column", "storage name", "type"}, rows)
}
