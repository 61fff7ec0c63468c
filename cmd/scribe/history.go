package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scribe/internal/jobs"
	"scribe/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var statuses []string

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show past transcription runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				filter := make([]jobs.Status, 0, len(statuses))
				for _, status := range statuses {
					filter = append(filter, jobs.Status(status))
				}

				items, err := store.List(cmd.Context(), limit, filter...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "History is empty")
					return nil
				}

				table := renderTable(
					[]string{"ID", "Input", "Status", "Format", "Audio", "xRT", "Created", "Error"},
					buildHistoryRows(items),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)

				summary, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d runs: %d completed, %d failed, %d running, %d pending\n",
					summary.Total, summary.Completed, summary.Failed, summary.Running, summary.Pending)
				return nil
			})
		},
	}

	historyCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by run status (repeatable)")

	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	historyCmd.AddCommand(newHistoryResetCommand(ctx))

	return historyCmd
}

func buildHistoryRows(items []*jobs.Job) [][]string {
	rows := make([][]string, 0, len(items))
	for _, job := range items {
		var audio, xrt string
		if job.Status == jobs.StatusCompleted {
			audio = fmt.Sprintf("%.1fs", job.AudioSeconds)
			xrt = fmt.Sprintf("%.2fx", job.RealTimeFactor)
		}
		rows = append(rows, []string{
			strconv.FormatInt(job.ID, 10),
			textutil.Truncate(job.InputPath, 48),
			string(job.Status),
			job.Format,
			audio,
			xrt,
			job.CreatedAt.Local().Format("2006-01-02 15:04"),
			job.ErrorKind,
		})
	}
	return rows
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d runs\n", removed)
				return nil
			})
		},
	}
}

func newHistoryResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Mark interrupted runs as failed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				count, err := store.ResetStuckRunning(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if count == 0 {
					fmt.Fprintln(out, "No interrupted runs")
					return nil
				}
				fmt.Fprintf(out, "Marked %d interrupted runs as failed\n", count)
				return nil
			})
		},
	}
}
