package commands

import (
	"fmt"

	"espritjobs/internal/state"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resetCmd)
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Deletes the saved position, the next run starts from the initial job id.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		lock, err := lockState(cfg.StateFile)
		if err != nil {
			return err
		}
		defer lock.Unlock()

		removed, err := state.NewFileCursorStore(cfg.StateFile, cfg.InitialJobID).Reset()
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved position")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s, the next run starts at job %d\n", cfg.StateFile, cfg.InitialJobID)
		return nil
	},
}
