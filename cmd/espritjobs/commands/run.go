package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"espritjobs/internal/config"
	"espritjobs/internal/extract"
	"espritjobs/internal/notify"
	"espritjobs/internal/state"
	"espritjobs/internal/walker"
	"espritjobs/lib/timezone"

	"github.com/mazen160/go-random"
	"github.com/spf13/cobra"
)

var runFlags struct {
	maxJobs  int
	headless bool
	driver   string
	reset    bool
	noFeeds  bool
}

func init() {
	flags := runCmd.Flags()
	flags.IntVar(&runFlags.maxJobs, "max-jobs", 200, "Stop after this many new jobs (overrides max_jobs).")
	flags.BoolVar(&runFlags.headless, "headless", true, "Run the browser without a window (overrides headless).")
	flags.StringVar(&runFlags.driver, "driver", config.DriverBrowser, "The session driver, browser or http (overrides driver).")
	flags.BoolVar(&runFlags.reset, "reset", false, "Forget the saved position and start from the initial job id.")
	flags.BoolVar(&runFlags.noFeeds, "no-feeds", false, "Do not regenerate the feeds after the run.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--max-jobs N] [--headless] [--driver browser|http] [--reset] [--no-feeds]",
	Short: "Walks job ids from the saved position and collects every new posting.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("max-jobs") {
			cfg.MaxJobs = runFlags.maxJobs
		}
		if flags.Changed("headless") {
			cfg.Headless = &runFlags.headless
		}
		if flags.Changed("driver") {
			cfg.Driver = runFlags.driver
		}
		err = cfg.Validate()
		if err != nil {
			return err
		}
		return scrape(cmd.Context(), cmd.OutOrStdout(), cfg)
	},
}

func scrape(ctx context.Context, out io.Writer, cfg config.Config) error {
	creds, err := cfg.ResolveCredentials()
	if err != nil {
		return err
	}

	lock, err := lockState(cfg.StateFile)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	cursors := state.NewFileCursorStore(cfg.StateFile, cfg.InitialJobID)
	if runFlags.reset {
		removed, err := cursors.Reset()
		if err != nil {
			return fmt.Errorf("reset cursor: %w", err)
		}
		slog.InfoContext(ctx, "cursor reset", "removed", removed)
	}

	extractor, err := extract.NewExtractor(cfg.BaseURL)
	if err != nil {
		return err
	}

	archive := openArchive(ctx, cfg)
	if archive != nil {
		defer archive.Close()
	}

	runID, err := random.String(8)
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	slog.InfoContext(ctx, "starting run", "run_id", runID, "driver", cfg.Driver, "max_jobs", cfg.MaxJobs)

	w := walker.New(walker.Options{
		Config:    walkerConfig(cfg),
		Open:      newOpener(cfg, creds),
		Extractor: extractor,
		Cursors:   cursors,
		Seen:      seedDuplicates(ctx, cfg, archive),
	})
	res, runErr := w.Run(ctx, cfg.MaxJobs)

	if res.LastAttempted < res.StartID {
		// nothing was fetched, there is nothing to persist
		if runErr == nil {
			fmt.Fprintln(out, "Nothing to do")
		}
		if errors.Is(runErr, context.Canceled) {
			slog.WarnContext(ctx, "run interrupted before the first job")
			return nil
		}
		return runErr
	}

	persist(context.WithoutCancel(ctx), cfg, res, persistOptions{
		RunID:   runID,
		Feeds:   !runFlags.noFeeds,
		Archive: archive,
		Notify:  notify.NewNotifier(cfg.Smtp),
		Now:     timezone.Now(),
	})
	report(out, res, w.StartID(state.Cursor{LastJobID: res.Checkpoint}))

	if errors.Is(runErr, context.Canceled) {
		slog.WarnContext(ctx, "run interrupted, collected jobs were saved", "next_id", res.NextID)
		return nil
	}
	return runErr
}

const sampleSize = 3

// report prints where the next run starts and a sample of the new jobs.
// nextStart is the first id the next run will fetch for the saved position.
func report(out io.Writer, res walker.Result, nextStart int) {
	fmt.Fprintf(out, "Collected %d new jobs (stop: %s)\n", len(res.Records), stopLabel(res.Stop))
	if len(res.Duplicates) > 0 {
		fmt.Fprintf(out, "Skipped %d duplicates\n", len(res.Duplicates))
	}
	if len(res.Failures) > 0 {
		fmt.Fprintf(out, "Failed to fetch %d jobs: %v\n", len(res.Failures), res.Failures)
	}
	if res.Saved {
		fmt.Fprintf(out, "Saved position: job %d, the next run starts at job %d\n", res.Checkpoint, nextStart)
	}

	sample := res.Records
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	for _, r := range sample {
		fmt.Fprintf(out, "  #%d %s - %s (%s)\n", r.JobID, r.Title, r.Company, r.Location)
	}
}

func stopLabel(reason walker.StopReason) string {
	if reason == walker.NotStopped {
		return "none"
	}
	return string(reason)
}
