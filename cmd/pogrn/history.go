package main

import (
	"github.com/spf13/cobra"

	"pogrn/internal/api"
	"pogrn/internal/config"
)

func newHistoryCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		po    string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent ledger activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				events, err := client.History(cmd.Context(), po, limit)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(events)
				}
				return writeHistory(events)
			})
		},
	}

	cmd.Flags().StringVar(&po, "po", "", "only events for this po number")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum events (server default 50)")
	return cmd
}
