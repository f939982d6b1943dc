package main

import (
	"strings"

	"github.com/spf13/cobra"

	"pogrn/internal/api"
	"pogrn/internal/config"
)

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show table location, document folders and record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}

				_ = writePlain("table_path: %s\n", resp.TablePath)
				_ = writePlain("po_dir: %s\n", resp.PODir)
				_ = writePlain("grn_dir: %s\n", resp.GRNDir)
				_ = writePlain("allowed_extensions: %s\n", strings.Join(resp.AllowedExtensions, ", "))
				if resp.HistorySchemaVersion > 0 {
					_ = writePlain("history_schema_version: %d\n", resp.HistorySchemaVersion)
				}
				_ = writePlain("total_records: %d\n", resp.TotalRecords)
				_ = writePlain("  pending: %d\n", resp.PendingRecords)
				return writePlain("  completed: %d\n", resp.CompletedRecords)
			})
		},
	}
}
