package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/models"
)

func newModelCatalog(cfg *config.Config, logger *slog.Logger) *models.Catalog {
	return models.NewCatalog(
		models.CatalogPath(cfg.Paths.ModelCacheDir),
		cfg.Models.CatalogURL,
		cfg.CatalogMaxAge(),
		0,
		logger,
	)
}

func newModelResolver(cfg *config.Config, logger *slog.Logger) *models.Resolver {
	return models.NewResolver(cfg.Paths.ModelCacheDir, newModelCatalog(cfg, logger), cfg.DownloadTimeout(), logger)
}

func newModelsCommand(ctx *commandContext) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect and download recognition models",
	}

	modelsCmd.AddCommand(newModelsListCommand(ctx))
	modelsCmd.AddCommand(newModelsDownloadCommand(ctx))

	return modelsCmd
}

func newModelsListCommand(ctx *commandContext) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List models from the Vosk catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			entries, err := newModelCatalog(cfg, logger).Entries(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				if entry.IsObsolete() && !showAll {
					continue
				}
				rows = append(rows, []string{
					entry.Name,
					entry.Lang,
					entry.SizeText,
					entry.Type,
					yesNo(models.Installed(cfg.Paths.ModelCacheDir, entry.Name)),
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No models in the catalog")
				return nil
			}

			table := renderTable(
				[]string{"Name", "Language", "Size", "Type", "Cached"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAll, "all", false, "Include obsolete models")
	return cmd
}

func newModelsDownloadCommand(ctx *commandContext) *cobra.Command {
	var languageCode string

	cmd := &cobra.Command{
		Use:   "download [name]",
		Short: "Download a model into the local cache",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			var name string
			if len(args) == 1 {
				name = strings.TrimSpace(args[0])
			}
			if name == "" && strings.TrimSpace(languageCode) == "" {
				return errors.New("pass a model name or --language")
			}

			dir, name, err := newModelResolver(cfg, logger).Resolve(runCtx, models.Request{
				ModelName: name,
				Language:  languageCode,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Model %s ready at %s\n", name, dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&languageCode, "language", "l", "", "Pick the recommended model for a language code")
	return cmd
}
