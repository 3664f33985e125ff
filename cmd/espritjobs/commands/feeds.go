package commands

import (
	"fmt"

	"espritjobs/internal/feeds"
	"espritjobs/internal/store"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(feedsCmd)
}

var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "Regenerates the rss feed, json feed and html index from the records file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		records, err := store.RecordFile{Path: cfg.RecordsFile}.Load()
		if err != nil {
			return err
		}
		err = feeds.Generate(cmd.Context(), records, cfg.FeedsDir, cfg.Feeds)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote feeds for %d jobs to %s\n", len(records), cfg.FeedsDir)
		return nil
	},
}
