package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"duck-sheets/internal/domain"
)

func newDatasetsCmd(s *settings) *cobra.Command {
	var (
		maxResults int
		pageToken  string
	)

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List loaded datasets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closeFn, err := openLocalApp(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer closeFn()

			items, next, err := a.Importer.ListDatasets(cmd.Context(), domain.PageRequest{MaxResults: maxResults, PageToken: pageToken})
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				out := make([]map[string]any, len(items))
				for i, d := range items {
					out[i] = map[string]any{
						"id":         d.ID,
						"name":       d.Name,
						"createdBy":  d.CreatedBy,
						"sourceFile": d.SourceFile,
						"createdAt":  d.CreatedAt,
					}
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"datasets": out, "nextPageToken": next})
			}

			rows := make([][]string, len(items))
			for i, d := range items {
				rows[i] = []string{d.ID, d.Name, d.CreatedBy, d.SourceFile, d.CreatedAt.Format(time.RFC3339)}
			}
			if err := printTable(cmd.OutOrStdout(), []string{"id", "name", "created by", "source", "created"}, rows); err != nil {
				return err
			}
			if next != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nmore: --page-token %s\n", next)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Page size")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "Token from a previous page")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one dataset with its columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openLocalApp(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer closeFn()

			ds, err := a.Importer.GetDataset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printDataset(cmd, ds)
		},
	})
	return cmd
}
