package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pogrn/internal/config"
	"pogrn/internal/format"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		outputName string
		logLevel   string
		apiURL     string
	)

	cmd := &cobra.Command{
		Use:           "pogrn",
		Short:         "pogrn records purchase orders and their goods received notes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			if strings.TrimSpace(apiURL) != "" {
				cfg.APIURL = strings.TrimSpace(apiURL)
			}
			if outputName != "" {
				formatter, ok := format.ByName(outputName)
				if !ok {
					return fmt.Errorf("unknown --output %q (json, json-pretty, yaml)", outputName)
				}
				outputFormatter = formatter
				jsonOutput = true
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&outputName, "output", "", "structured output format: json, json-pretty, yaml")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (default from config)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newInfoCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
		newListCmd(cfg, &jsonOutput),
		newShowCmd(cfg, &jsonOutput),
		newSubmitCmd(cfg, &jsonOutput),
		newGRNCmd(cfg, &jsonOutput),
		newDownloadCmd(cfg),
		newDedupeCmd(cfg, &jsonOutput),
		newExportCmd(cfg),
		newHistoryCmd(cfg, &jsonOutput),
	)

	return cmd
}
