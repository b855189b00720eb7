package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"duck-sheets/internal/discovery"
)

func newLatestCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the most recently modified data file",
		Long:  "Scan the data directory for supported files (" + fmt.Sprint(discovery.SupportedExtensions()) + ") and report the newest one.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			info, ok := discovery.FindMostRecentDataFile(cmd.Context(), s.DataDir, logger)
			if !ok {
				return fmt.Errorf("no data files found in %s", s.DataDir)
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"fileName":     info.FileName,
					"fullPath":     info.FullPath,
					"modifiedTime": info.ModifiedTime,
					"sizeBytes":    info.SizeBytes,
				})
			}
			return printTable(cmd.OutOrStdout(),
				[]string{"file", "size", "modified", "path"},
				[][]string{{
					info.FileName,
					strconv.FormatInt(info.SizeBytes, 10),
					info.ModifiedTime.Format(time.RFC3339),
					info.FullPath,
				}})
		},
	}
}
