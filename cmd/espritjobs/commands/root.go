package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"espritjobs/internal/config"
	"espritjobs/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
	logPath    string
	logFile    *os.File
)

var rootCmd = &cobra.Command{
	Use:           "espritjobs",
	Short:         "espritjobs walks the Esprit Connect job board and keeps a local copy of every posting.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var w io.Writer = os.Stderr
		if logPath != "" {
			f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			logFile = f
			w = io.MultiWriter(os.Stderr, f)
		}
		telemetry.InitSlog(w, debug)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "config.json5", "The configuration file, a config.local.json5 next to it overrides its values.")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging.")
	flags.StringVar(&logPath, "log-file", "scraper.log", "Also append logs to this file, empty disables it.")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
