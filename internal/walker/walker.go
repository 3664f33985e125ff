// Package walker walks the job ID space one ID at a time and decides when
// to stop and where the next run resumes.
package walker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"espritjobs/internal/jobs"
	"espritjobs/internal/session"
	"espritjobs/internal/state"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("espritjobs/walker")
var meter = otel.Meter("espritjobs/walker")
var attemptCounter, _ = meter.Int64Counter("walker.attempts")

var ErrLoginFailed = errors.New("login failed, walk not started")

type CursorStore interface {
	Load(ctx context.Context) state.Cursor
	Save(ctx context.Context, lastID int) error
}

type Extractor interface {
	Extract(ctx context.Context, jobID int, jobURL string, page []byte) (jobs.Record, error)
}

// Opener acquires the browsing session for one walk.
type Opener func(ctx context.Context) (session.Session, error)

type Config struct {
	BaseURL   string
	InitialID int
	// RequestDelay is waited before every fetch after the first.
	RequestDelay time.Duration
	// SettleDelay is additionally waited after a missing page.
	SettleDelay time.Duration
	// MaxConsecutiveFailures ends the walk after that many failed
	// fetches in a row, zero means never.
	MaxConsecutiveFailures int
}

type Walker struct {
	cfg       Config
	open      Opener
	extractor Extractor
	cursors   CursorStore
	seen      state.DuplicateSet
	pacer     Pacer
}

type Options struct {
	Config    Config
	Open      Opener
	Extractor Extractor
	Cursors   CursorStore
	// Seen is the set of already collected job IDs, the walker owns it for
	// the duration of Run.
	Seen  state.DuplicateSet
	Pacer Pacer
}

func New(opts Options) *Walker {
	pacer := opts.Pacer
	if pacer == nil {
		pacer = SleepPacer{}
	}
	seen := opts.Seen
	if seen == nil {
		seen = state.NewDuplicateSet()
	}
	return &Walker{
		cfg:       opts.Config,
		open:      opts.Open,
		extractor: opts.Extractor,
		cursors:   opts.Cursors,
		seen:      seen,
		pacer:     pacer,
	}
}

type Result struct {
	Records []jobs.Record
	StartID int
	// LastAttempted is the last ID that was fetched, StartID-1 when none
	// were.
	LastAttempted int
	// NextID is where the walk would have continued.
	NextID     int
	Stop       StopReason
	Checkpoint int
	Saved      bool
	Duplicates []int
	Failures   []int
}

func (w *Walker) JobURL(id int) string {
	return fmt.Sprintf("%s/jobs/%d", strings.TrimSuffix(w.cfg.BaseURL, "/"), id)
}

// StartID returns the first ID of the next walk for the given cursor. The
// cursor ID itself is walked again when it is past the initial ID.
func (w *Walker) StartID(cursor state.Cursor) int {
	start := cursor.LastJobID
	if start > w.cfg.InitialID {
		start--
	}
	return start
}

// Run walks job IDs from the persisted cursor until maxJobs new records were
// collected, a job is missing, an empty record is found or too many fetches
// failed in a row. The collected records are returned even when err is not
// nil so they can still be persisted.
func (w *Walker) Run(ctx context.Context, maxJobs int) (Result, error) {
	ctx, span := tracer.Start(ctx, "walker:Run", trace.WithAttributes(
		attribute.Int("max_jobs", maxJobs),
	))
	defer span.End()

	cursor := w.cursors.Load(ctx)
	start := w.StartID(cursor)
	if start != cursor.LastJobID {
		slog.InfoContext(ctx, "resuming one job before the saved cursor", "cursor", cursor.LastJobID, "start", start)
	}
	res := Result{StartID: start, LastAttempted: start - 1, NextID: start}
	span.SetAttributes(attribute.Int("start_id", start))

	if maxJobs <= 0 {
		slog.InfoContext(ctx, "nothing to do", "max_jobs", maxJobs)
		return res, nil
	}

	sess, err := w.open(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open session")
		return res, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			slog.WarnContext(ctx, "failed to close session", "err", err)
		}
	}()

	err = sess.Login(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return res, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	st := NewState(start, maxJobs, w.seen, w.cfg.MaxConsecutiveFailures)
	slog.InfoContext(ctx, "starting walk", "start_id", start, "max_jobs", maxJobs, "known_jobs", st.Seen.Len())

	for {
		if ctx.Err() != nil {
			return w.abort(ctx, res, st, ctx.Err())
		}

		attempt, fatal := w.attempt(ctx, sess, st.NextID)
		if fatal != nil {
			return w.abort(ctx, res, st, fatal)
		}

		var verdict Verdict
		st, verdict = Step(st, attempt)
		res.LastAttempted = attempt.ID
		res.NextID = st.NextID
		w.record(ctx, &res, attempt, verdict, st)

		if verdict.Stopped() {
			res.Stop = verdict.Stop
			res.Checkpoint = verdict.Checkpoint
			w.checkpoint(ctx, &res)
			span.SetAttributes(
				attribute.String("stop", string(res.Stop)),
				attribute.Int("accepted", len(res.Records)),
			)
			slog.InfoContext(
				ctx, "walk finished",
				"reason", res.Stop,
				"accepted", len(res.Records),
				"duplicates", len(res.Duplicates),
				"failures", len(res.Failures),
				"checkpoint", res.Checkpoint,
			)
			return res, nil
		}

		err := w.pacer.Wait(ctx, w.cfg.RequestDelay)
		if err != nil {
			return w.abort(ctx, res, st, err)
		}
	}
}

// attempt fetches and classifies one ID. Only errors that make the session
// unusable are returned, everything else becomes a Failed attempt.
func (w *Walker) attempt(ctx context.Context, sess session.Session, id int) (Attempt, error) {
	ctx, span := tracer.Start(ctx, "walker:attempt", trace.WithAttributes(
		attribute.Int("job_id", id),
	))
	defer span.End()

	jobURL := w.JobURL(id)
	slog.InfoContext(ctx, "checking job", "job_id", id, "url", jobURL)

	page, err := sess.Navigate(ctx, jobURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "navigation failed")
		if errors.Is(err, session.ErrSessionLost) || ctx.Err() != nil {
			return Attempt{}, err
		}
		return Attempt{ID: id, Outcome: Failed, Err: err}, nil
	}
	span.SetAttributes(attribute.String("final_url", page.FinalURL))

	if IsMissing(page.FinalURL, w.cfg.BaseURL) {
		slog.InfoContext(ctx, "job does not exist", "job_id", id, "redirected_to", page.FinalURL)
		err := w.pacer.Wait(ctx, w.cfg.SettleDelay)
		if err != nil {
			return Attempt{}, err
		}
		return Attempt{ID: id, Outcome: Missing}, nil
	}

	record, err := w.extractor.Extract(ctx, id, jobURL, page.HTML)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		return Attempt{ID: id, Outcome: Failed, Err: err}, nil
	}
	if jobs.IsEmpty(record) {
		return Attempt{ID: id, Outcome: Empty, Record: record}, nil
	}
	return Attempt{ID: id, Outcome: Found, Record: record}, nil
}

func (w *Walker) record(ctx context.Context, res *Result, a Attempt, v Verdict, st State) {
	attemptCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", a.Outcome.String())))

	switch {
	case v.Appended:
		res.Records = append(res.Records, a.Record)
		slog.InfoContext(
			ctx, "collected job",
			"job_id", a.ID,
			"title", a.Record.Title,
			"company", a.Record.Company,
			"progress", fmt.Sprintf("%d/%d", st.Accepted, st.Quota),
		)
	case v.Duplicate:
		res.Duplicates = append(res.Duplicates, a.ID)
		slog.InfoContext(ctx, "skipping duplicate job", "job_id", a.ID)
	case a.Outcome == Failed:
		res.Failures = append(res.Failures, a.ID)
		slog.WarnContext(ctx, "failed to scrape job, treating it as missing", "job_id", a.ID, "err", a.Err)
	case a.Outcome == Empty:
		indicators := jobs.EmptyIndicators(a.Record)
		slog.WarnContext(
			ctx, "empty job record, stopping and saving progress",
			"job_id", a.ID,
			"title", a.Record.Title,
			"company", a.Record.Company,
			"indicators", indicators.Count(),
		)
	}
}

func (w *Walker) checkpoint(ctx context.Context, res *Result) {
	err := w.cursors.Save(ctx, res.Checkpoint)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save state", "last_job_id", res.Checkpoint, "err", err)
		return
	}
	res.Saved = true
}

// abort ends the walk on a fatal error. Progress is saved at the last
// completed ID when any ID was completed.
func (w *Walker) abort(ctx context.Context, res Result, st State, cause error) (Result, error) {
	res.Stop = StopAborted
	res.NextID = st.NextID
	if st.NextID > res.StartID {
		res.Checkpoint = st.NextID - 1
		w.checkpoint(context.WithoutCancel(ctx), &res)
	}
	slog.WarnContext(
		ctx, "walk aborted",
		"accepted", len(res.Records),
		"next_id", st.NextID,
		"err", cause,
	)
	return res, cause
}
