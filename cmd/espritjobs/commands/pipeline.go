package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"espritjobs/internal/config"
	"espritjobs/internal/feeds"
	"espritjobs/internal/jobs"
	"espritjobs/internal/notify"
	"espritjobs/internal/session"
	"espritjobs/internal/state"
	"espritjobs/internal/store"
	"espritjobs/internal/walker"
	"espritjobs/lib/restyutil"

	"github.com/gofrs/flock"
)

var ErrAlreadyRunning = errors.New("another scraper instance holds the state lock")

// lockState takes the advisory lock guarding the cursor file.
func lockState(stateFile string) (*flock.Flock, error) {
	lock := flock.New(stateFile + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", lock.Path(), err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	return lock, nil
}

// openArchive returns nil when no archive is configured or it cannot be
// opened, the archive is never required for a run.
func openArchive(ctx context.Context, cfg config.Config) *store.Archive {
	if !cfg.Archive.Enabled() {
		return nil
	}
	archive, err := store.OpenArchive(ctx, cfg.Archive)
	if err != nil {
		slog.WarnContext(ctx, "failed to open archive, continuing without it", "err", err)
		return nil
	}
	return archive
}

// seedDuplicates builds the duplicate set from the records files and the
// archive, when one is open.
func seedDuplicates(ctx context.Context, cfg config.Config, archive *store.Archive) state.DuplicateSet {
	seen := state.SeedFromRecordFiles(cfg.RecordFiles()...)
	if archive == nil {
		return seen
	}
	ids, err := archive.KnownIDs(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to read archived job ids", "err", err)
		return seen
	}
	for _, id := range ids {
		seen.Add(id)
	}
	slog.InfoContext(ctx, "seeded duplicate set", "ids", seen.Len(), "archived", len(ids))
	return seen
}

func newOpener(cfg config.Config, creds session.Credentials) walker.Opener {
	return func(ctx context.Context) (session.Session, error) {
		if cfg.Driver == config.DriverHTTP {
			var dump restyutil.InstrumentOutput
			if cfg.DumpHTTP != "" {
				out, err := restyutil.NewFilesystemOutput(cfg.DumpHTTP)
				if err != nil {
					return nil, err
				}
				dump = out
			}
			sess, err := session.NewHTTPSession(session.HTTPOptions{
				BaseURL:          cfg.BaseURL,
				Credentials:      creds,
				Form:             cfg.Login,
				CloudflareBypass: *cfg.CloudflareBypass,
				Dump:             dump,
			})
			if err != nil {
				return nil, err
			}
			return sess, nil
		}

		sess, err := session.NewBrowserSession(ctx, session.BrowserOptions{
			BaseURL:       cfg.BaseURL,
			Credentials:   creds,
			Headless:      *cfg.Headless,
			PageLoadDelay: cfg.PageLoadDelay(),
			Install:       cfg.InstallBrowser,
		})
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
}

func walkerConfig(cfg config.Config) walker.Config {
	return walker.Config{
		BaseURL:                cfg.BaseURL,
		InitialID:              cfg.InitialJobID,
		RequestDelay:           cfg.RequestDelay(),
		SettleDelay:            cfg.SettleDelay(),
		MaxConsecutiveFailures: *cfg.MaxConsecutiveFailures,
	}
}

type persistOptions struct {
	RunID   string
	Feeds   bool
	Archive *store.Archive
	Notify  notify.Notifier
	Now     time.Time
}

// persist writes everything a run produced. Every step is attempted even
// when an earlier one failed, failures are logged and the full record list
// as written is returned.
func persist(ctx context.Context, cfg config.Config, res walker.Result, opts persistOptions) []jobs.Record {
	file := store.RecordFile{Path: cfg.RecordsFile}
	all, err := file.Append(res.Records)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save records", "path", cfg.RecordsFile, "err", err)
		all = res.Records
	} else {
		slog.InfoContext(ctx, "saved records", "path", cfg.RecordsFile, "new", len(res.Records), "total", len(all))
	}

	summaryPath, err := store.WriteSummary(cfg.DataDir, store.Summary{
		RunID:             opts.RunID,
		TotalJobs:         len(res.Records),
		TotalRecords:      len(all),
		SessionStartJobID: res.StartID,
		SessionEndJobID:   res.LastAttempted,
		NextJobID:         res.NextID,
		StopReason:        string(res.Stop),
		ScrapedAt:         opts.Now.Format(jobs.TimestampLayout),
		Jobs:              store.NewSummaryEntries(res.Records),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to write summary", "err", err)
	} else {
		slog.DebugContext(ctx, "wrote summary", "path", summaryPath)
	}

	if opts.Archive != nil {
		inserted, err := opts.Archive.Save(ctx, res.Records)
		if err != nil {
			slog.ErrorContext(ctx, "failed to archive records", "err", err)
		} else {
			slog.InfoContext(ctx, "archived records", "inserted", inserted)
		}
	}

	if opts.Feeds {
		err = feeds.Generate(ctx, all, cfg.FeedsDir, cfg.Feeds)
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate feeds", "err", err)
		}
	}

	if cfg.Smtp.Enabled() && len(res.Records) > 0 {
		err = opts.Notify.Send(ctx, res.Records)
		if err != nil {
			slog.ErrorContext(ctx, "failed to send digest", "err", err)
		}
	}

	return all
}
