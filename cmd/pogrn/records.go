package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pogrn/internal/api"
	"pogrn/internal/config"
)

func newListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var po, vendor string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, optionally filtered by po number or vendor substring",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.ListRecords(cmd.Context(), po, vendor)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeRecordList(resp)
			})
		},
	}

	cmd.Flags().StringVar(&po, "po", "", "po number substring")
	cmd.Flags().StringVar(&vendor, "vendor", "", "vendor name substring (case-insensitive)")
	return cmd
}

func newShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <po>",
		Short: "Show one record",
		Args:  requirePONumberArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetRecord(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeRecordDetail(resp)
			})
		},
	}
}

type submitCmdOptions struct {
	po       string
	vendor   string
	date     string
	filePath string
	filename string
}

func newSubmitCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &submitCmdOptions{}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Record a new purchase order as pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.SubmitRequest{
				ReceivedDate: opts.date,
				PONumber:     opts.po,
				VendorName:   opts.vendor,
			}
			if opts.filePath != "" {
				file, err := os.Open(opts.filePath)
				if err != nil {
					return err
				}
				defer file.Close()
				req.File = &api.FileUpload{
					Filename: chooseFirst(strings.TrimSpace(opts.filename), filepath.Base(opts.filePath)),
					Content:  file,
				}
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.SubmitPO(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("recorded %s\n", formatRecordLine(resp))
			})
		},
	}

	cmd.Flags().StringVar(&opts.po, "po", "", "po number (digits only)")
	cmd.Flags().StringVar(&opts.vendor, "vendor", "", "vendor name")
	cmd.Flags().StringVar(&opts.date, "date", "", "received date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&opts.filePath, "file", "f", "", "PO document to upload")
	cmd.Flags().StringVar(&opts.filename, "filename", "", "override the uploaded filename")
	_ = cmd.MarkFlagRequired("po")
	_ = cmd.MarkFlagRequired("vendor")
	return cmd
}

func newGRNCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "grn <po>",
		Short: "Upload the goods received note for a record and mark it completed",
		Args:  requirePONumberArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(filePath)
			if err != nil {
				return err
			}
			defer file.Close()

			upload := api.FileUpload{Filename: filepath.Base(filePath), Content: file}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.UpdateGRN(cmd.Context(), args[0], upload)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("updated %s\n", formatRecordLine(resp))
			})
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "GRN document to upload")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDownloadCmd(cfg *config.Config) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "download <po> <po|grn>",
		Short: "Download a stored PO or GRN document",
		Args:  requireExactlyArgs(2, "po number and document kind are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := strings.ToLower(strings.TrimSpace(args[1]))
			if kind != "po" && kind != "grn" {
				return fmt.Errorf("kind must be po or grn")
			}
			return withClient(cfg, func(client *api.Client) error {
				var filename string
				err := writeOutput(outputPath, func(w io.Writer) error {
					var err error
					filename, err = client.Download(cmd.Context(), args[0], kind, w)
					return err
				})
				if err != nil {
					return err
				}
				if outputPath != "" && outputPath != "-" {
					fmt.Fprintf(os.Stderr, "saved %s (%s)\n", outputPath, filename)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "out", "o", "", "output file (default: stdout)")
	return cmd
}
