package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pogrn/internal/api"
	"pogrn/internal/config"
)

func newDedupeCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove repeated po numbers, keeping the first occurrence",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("dedupe rewrites the table; re-run with --yes to confirm")
			}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Dedupe(cmd.Context(), true)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("records: %d -> %d (removed %d)\n", resp.Before, resp.After, resp.Removed)
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the table rewrite")
	return cmd
}
