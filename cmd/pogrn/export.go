package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pogrn/internal/api"
	"pogrn/internal/config"
	"pogrn/internal/format"
)

func newExportCmd(cfg *config.Config) *cobra.Command {
	var (
		outputPath string
		exportFmt  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all records as CSV or XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFmt = strings.ToLower(strings.TrimSpace(exportFmt))
			if _, _, err := format.ExportContentType(exportFmt); err != nil {
				return err
			}
			if exportFmt == format.ExportXLSX && (outputPath == "" || outputPath == "-") {
				return fmt.Errorf("xlsx export requires --out")
			}
			return withClient(cfg, func(client *api.Client) error {
				return writeOutput(outputPath, func(w io.Writer) error {
					return client.Export(cmd.Context(), exportFmt, w)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&exportFmt, "format", format.ExportCSV, "export format: csv or xlsx")
	return cmd
}
