package commands

import (
	"context"
	"io"
	"log/slog"

	"espritjobs/internal/config"
	"espritjobs/internal/state"
	"espritjobs/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Prints the saved position and how many jobs were collected so far.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		printStatus(cmd.Context(), cmd.OutOrStdout(), cfg)
		return nil
	},
}

func printStatus(ctx context.Context, out io.Writer, cfg config.Config) {
	cursors := state.NewFileCursorStore(cfg.StateFile, cfg.InitialJobID)
	cursor := cursors.Load(ctx)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Setting", "Value"})

	lastUpdated := cursor.LastUpdated
	if lastUpdated == "" {
		lastUpdated = "never"
	}
	t.AppendRows([]table.Row{
		{"Base url", cfg.BaseURL},
		{"Saved job id", cursor.LastJobID},
		{"Last updated", lastUpdated},
		{"Total runs", cursor.TotalRuns},
	})
	t.AppendSeparator()

	records, err := store.RecordFile{Path: cfg.RecordsFile}.Load()
	if err != nil {
		slog.WarnContext(ctx, "failed to read records", "path", cfg.RecordsFile, "err", err)
	}
	t.AppendRow(table.Row{"Records file", cfg.RecordsFile})
	t.AppendRow(table.Row{"Records", len(records)})

	if archive := openArchive(ctx, cfg); archive != nil {
		defer archive.Close()
		count, err := archive.Count(ctx)
		if err != nil {
			slog.WarnContext(ctx, "failed to count archived jobs", "err", err)
		} else {
			t.AppendRow(table.Row{"Archived", count})
		}
	}

	t.Render()
}
