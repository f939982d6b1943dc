package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"pogrn/internal/attachstore"
	"pogrn/internal/config"
	"pogrn/internal/history"
	"pogrn/internal/server"
	"pogrn/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the pogrn API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.TablePath == "" {
				return fmt.Errorf("table path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening table", "path", cfg.TablePath)
			records, err := store.Open(cfg.TablePath, logger)
			if err != nil {
				return err
			}

			docs, err := attachstore.NewLocalDir(attachstore.Options{
				PODir:             cfg.PODir,
				GRNDir:            cfg.GRNDir,
				AllowedExtensions: cfg.AllowedExtensions,
				Logger:            logger,
			})
			if err != nil {
				return err
			}

			opts := server.Options{
				Records:         records,
				Documents:       docs,
				TablePath:       cfg.TablePath,
				PODir:           cfg.PODir,
				GRNDir:          cfg.GRNDir,
				AllowedExts:     docs.AllowedExtensions(),
				MaxUploadBytes:  cfg.MaxUploadBytes,
				MultipartMemory: cfg.MultipartMaxMemory,
				Logger:          logger,
			}

			// The journal is optional; the ledger keeps working without it.
			journal, err := history.Open(cfg.HistoryPath)
			if err != nil {
				logger.Warn("history journal unavailable", "path", cfg.HistoryPath, "error", err)
			} else {
				defer journal.Close()
				opts.History = journal
			}

			return server.New(addr, opts).ListenAndServe()
		},
	}
}
