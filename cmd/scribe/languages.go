package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List languages with published models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			options, err := newModelCatalog(cfg, logger).Languages(cmd.Context())
			if err != nil {
				return err
			}
			if len(options) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No languages in the catalog")
				return nil
			}

			rows := make([][]string, 0, len(options))
			for _, option := range options {
				rows = append(rows, []string{option.Code, option.Display, strconv.Itoa(option.Models)})
			}
			table := renderTable(
				[]string{"Code", "Language", "Models"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}
