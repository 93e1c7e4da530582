package main

import (
	"fmt"
	"os"

	"CSEAnalyzer/internal/notifier"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [symbol]",
		Short: "List recorded analyses, newest first",
		Example: `  cse-analyzer history
  cse-analyzer history JKH.N0000 --limit 5
  cse-analyzer history --id 0b6f6c1e-5d0c-4d7e-9a55-3f1f7a2f9c11
  cse-analyzer history --csv history.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := app.recorder()
			if err != nil {
				return err
			}
			defer rec.Close()

			if id, _ := cmd.Flags().GetString("id"); id != "" {
				a, err := rec.Analysis(id)
				if err != nil {
					return fmt.Errorf("analysis %s: %w", id, err)
				}
				return app.print(cmd, a, notifier.FormatAnalysis(a))
			}

			symbol := ""
			if len(args) == 1 {
				symbol = args[0]
			}
			limit, _ := cmd.Flags().GetInt("limit")
			rows, err := rec.History(symbol, limit)
			if err != nil {
				return err
			}

			if path, _ := cmd.Flags().GetString("csv"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create csv: %w", err)
				}
				if err := notifier.WriteHistoryCSV(f, rows); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				app.Log.Info().Str("path", path).Int("rows", len(rows)).Msg("history exported")
			}
			return app.print(cmd, rows, notifier.FormatHistory(rows))
		},
	}
	cmd.Flags().Int("limit", 20, "maximum rows to list")
	cmd.Flags().String("id", "", "show the full stored analysis with this ID")
	cmd.Flags().String("csv", "", "also write the listed rows as CSV to this file")
	return cmd
}
