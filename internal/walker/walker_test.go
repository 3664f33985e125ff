package walker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"espritjobs/internal/extract"
	"espritjobs/internal/jobs"
	"espritjobs/internal/session"
	"espritjobs/internal/state"

	"github.com/stretchr/testify/require"
)

const testBase = "https://espritconnect.com"

type navResult struct {
	page session.Page
	err  error
}

type fakeSession struct {
	results  map[string]navResult
	loginErr error
	visited  []string
	closed   bool
	// onNavigate runs before every navigation.
	onNavigate func(url string)
}

func newFakeSession() *fakeSession {
	return &fakeSession{results: map[string]navResult{}}
}

func jobURL(id int) string {
	return fmt.Sprintf("%s/jobs/%d", testBase, id)
}

func jobPage(title, company string) string {
	return fmt.Sprintf(`<html><body>
		<h2 id="jobPageJobTitle">%s</h2>
		<p id="jobPageOrganization_0">%s</p>
		<div id="jobPageDescription">A long enough description of the role and the team.</div>
	</body></html>`, title, company)
}

func (f *fakeSession) valid(id int) *fakeSession {
	f.results[jobURL(id)] = navResult{page: session.Page{
		FinalURL: jobURL(id),
		HTML:     []byte(jobPage(fmt.Sprintf("Job %d", id), "Acme")),
	}}
	return f
}

func (f *fakeSession) redirect(id int, to string) *fakeSession {
	f.results[jobURL(id)] = navResult{page: session.Page{FinalURL: to, HTML: []byte("<html></html>")}}
	return f
}

func (f *fakeSession) placeholder(id int) *fakeSession {
	f.results[jobURL(id)] = navResult{page: session.Page{
		FinalURL: jobURL(id),
		HTML:     []byte(`<html><body><h2 id="jobPageJobTitle"></h2></body></html>`),
	}}
	return f
}

func (f *fakeSession) fail(id int, err error) *fakeSession {
	f.results[jobURL(id)] = navResult{err: err}
	return f
}

func (f *fakeSession) Login(ctx context.Context) error {
	return f.loginErr
}

func (f *fakeSession) Navigate(ctx context.Context, url string) (session.Page, error) {
	if f.onNavigate != nil {
		f.onNavigate(url)
	}
	f.visited = append(f.visited, url)
	res, ok := f.results[url]
	if !ok {
		return session.Page{FinalURL: testBase + "/feed"}, nil
	}
	return res.page, res.err
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

type memoryCursors struct {
	initial int
	cursor  *state.Cursor
	saves   []int
}

func (m *memoryCursors) Load(ctx context.Context) state.Cursor {
	if m.cursor == nil {
		return state.Cursor{LastJobID: m.initial}
	}
	return *m.cursor
}

func (m *memoryCursors) Save(ctx context.Context, lastID int) error {
	runs := 0
	if m.cursor != nil {
		runs = m.cursor.TotalRuns
	}
	m.cursor = &state.Cursor{LastJobID: lastID, TotalRuns: runs + 1}
	m.saves = append(m.saves, lastID)
	return nil
}

type recordingPacer struct {
	waits  []time.Duration
	onWait func()
}

func (p *recordingPacer) Wait(ctx context.Context, d time.Duration) error {
	p.waits = append(p.waits, d)
	if p.onWait != nil {
		p.onWait()
	}
	return ctx.Err()
}

type harness struct {
	sess    *fakeSession
	cursors *memoryCursors
	pacer   *recordingPacer
	opened  int
}

func newHarness(sess *fakeSession) *harness {
	return &harness{
		sess:    sess,
		cursors: &memoryCursors{initial: 795},
		pacer:   &recordingPacer{},
	}
}

func (h *harness) walker(t testing.TB, seen state.DuplicateSet) *Walker {
	e, err := extract.NewExtractor(testBase)
	require.NoError(t, err)
	return New(Options{
		Config: Config{
			BaseURL:                testBase,
			InitialID:              795,
			RequestDelay:           time.Second,
			SettleDelay:            3 * time.Second,
			MaxConsecutiveFailures: 3,
		},
		Open: func(ctx context.Context) (session.Session, error) {
			h.opened++
			return h.sess, nil
		},
		Extractor: e,
		Cursors:   h.cursors,
		Seen:      seen,
		Pacer:     h.pacer,
	})
}

func ids(res Result) []int {
	out := make([]int, 0, len(res.Records))
	for _, r := range res.Records {
		out = append(out, r.JobID)
	}
	return out
}

func TestWalkUntilMissing(t *testing.T) {
	sess := newFakeSession().valid(795).valid(796).valid(797).redirect(798, testBase+"/feed")
	h := newHarness(sess)

	res, err := h.walker(t, nil).Run(context.Background(), 200)
	require.NoError(t, err)

	require.Equal(t, []int{795, 796, 797}, ids(res))
	require.Equal(t, StopMissing, res.Stop)
	require.Equal(t, []int{798}, h.cursors.saves)
	require.Equal(t, 1, h.cursors.cursor.TotalRuns)
	require.Equal(t, 799, res.NextID)
	require.Equal(t, 798, res.LastAttempted)
	require.True(t, sess.closed)
	require.Equal(t, []time.Duration{time.Second, time.Second, time.Second, 3 * time.Second}, h.pacer.waits)
	require.Equal(t, "Job 795", res.Records[0].Title)
	require.Equal(t, jobURL(795), res.Records[0].URL)
}

func TestWalkEmptyRecordFailsafe(t *testing.T) {
	sess := newFakeSession().valid(799).placeholder(800).valid(801)
	h := newHarness(sess)
	h.cursors.cursor = &state.Cursor{LastJobID: 800, TotalRuns: 3}

	res, err := h.walker(t, nil).Run(context.Background(), 200)
	require.NoError(t, err)

	require.Equal(t, []int{799}, ids(res))
	require.Equal(t, StopEmpty, res.Stop)
	require.Equal(t, []int{800}, h.cursors.saves)
	require.Equal(t, 4, h.cursors.cursor.TotalRuns)
	require.NotContains(t, sess.visited, jobURL(801))
}

func TestWalkSkipsDuplicates(t *testing.T) {
	sess := newFakeSession().valid(805).valid(806)
	h := newHarness(sess)
	h.cursors.cursor = &state.Cursor{LastJobID: 806}
	seen := state.NewDuplicateSet(805)

	res, err := h.walker(t, seen).Run(context.Background(), 200)
	require.NoError(t, err)

	require.Equal(t, []int{806}, ids(res))
	require.Equal(t, []int{805}, res.Duplicates)
	require.Equal(t, []string{jobURL(805), jobURL(806), jobURL(807)}, sess.visited)
	require.True(t, seen.Has(806))
	require.Equal(t, []int{807}, h.cursors.saves)
}

func TestWalkResumesBeforeCursor(t *testing.T) {
	testCases := []struct {
		cursor int
		first  int
	}{
		{cursor: 900, first: 899},
		{cursor: 796, first: 795},
		{cursor: 795, first: 795},
		{cursor: 700, first: 700},
	}

	for _, test := range testCases {
		t.Run(fmt.Sprint(test.cursor), func(t *testing.T) {
			sess := newFakeSession()
			h := newHarness(sess)
			h.cursors.cursor = &state.Cursor{LastJobID: test.cursor}

			res, err := h.walker(t, nil).Run(context.Background(), 10)
			require.NoError(t, err)
			require.Equal(t, test.first, res.StartID)
			require.Equal(t, jobURL(test.first), sess.visited[0])
		})
	}
}

func TestWalkQuota(t *testing.T) {
	sess := newFakeSession().valid(795).valid(796).valid(797)
	h := newHarness(sess)

	res, err := h.walker(t, nil).Run(context.Background(), 2)
	require.NoError(t, err)

	require.Equal(t, []int{795, 796}, ids(res))
	require.Equal(t, StopQuota, res.Stop)
	require.Equal(t, []int{796}, h.cursors.saves)
	require.Equal(t, 797, res.NextID)
	require.Len(t, sess.visited, 2)
	require.Equal(t, []time.Duration{time.Second}, h.pacer.waits)
}

func TestWalkTransientFailures(t *testing.T) {
	boom := errors.New("net::ERR_CONNECTION_RESET")

	t.Run("single failure continues", func(t *testing.T) {
		sess := newFakeSession().valid(795).fail(796, boom).valid(797)
		h := newHarness(sess)

		res, err := h.walker(t, nil).Run(context.Background(), 200)
		require.NoError(t, err)
		require.Equal(t, []int{795, 797}, ids(res))
		require.Equal(t, []int{796}, res.Failures)
		require.Equal(t, StopMissing, res.Stop)
		require.Equal(t, []int{798}, h.cursors.saves)
	})

	t.Run("consecutive failures stop the walk", func(t *testing.T) {
		sess := newFakeSession().valid(795).fail(796, boom).fail(797, boom).fail(798, boom).valid(799)
		h := newHarness(sess)

		res, err := h.walker(t, nil).Run(context.Background(), 200)
		require.NoError(t, err)
		require.Equal(t, []int{795}, ids(res))
		require.Equal(t, StopFailures, res.Stop)
		require.Equal(t, []int{796}, h.cursors.saves)
		require.NotContains(t, sess.visited, jobURL(799))
	})

	t.Run("extraction failure", func(t *testing.T) {
		sess := newFakeSession().valid(795)
		h := newHarness(sess)
		w := h.walker(t, nil)
		w.extractor = failingExtractor{}

		res, err := w.Run(context.Background(), 200)
		require.NoError(t, err)
		require.Empty(t, res.Records)
		require.Equal(t, []int{795}, res.Failures)
	})
}

type failingExtractor struct{}

func (failingExtractor) Extract(ctx context.Context, id int, url string, page []byte) (jobs.Record, error) {
	return jobs.Record{}, errors.New("unparseable")
}

func TestWalkSessionLost(t *testing.T) {
	sess := newFakeSession().valid(795).valid(796).fail(797, fmt.Errorf("%w: target closed", session.ErrSessionLost))
	h := newHarness(sess)

	res, err := h.walker(t, nil).Run(context.Background(), 200)
	require.ErrorIs(t, err, session.ErrSessionLost)

	require.Equal(t, []int{795, 796}, ids(res))
	require.Equal(t, StopAborted, res.Stop)
	require.Equal(t, []int{796}, h.cursors.saves)
	require.True(t, sess.closed)
}

func TestWalkLoginFailure(t *testing.T) {
	sess := newFakeSession().valid(795)
	sess.loginErr = session.ErrLoginFailed
	h := newHarness(sess)

	res, err := h.walker(t, nil).Run(context.Background(), 200)
	require.ErrorIs(t, err, ErrLoginFailed)
	require.ErrorIs(t, err, session.ErrLoginFailed)
	require.Empty(t, res.Records)
	require.Empty(t, sess.visited)
	require.Empty(t, h.cursors.saves)
	require.True(t, sess.closed)
}

func TestWalkInterrupted(t *testing.T) {
	sess := newFakeSession().valid(795).valid(796).valid(797)
	h := newHarness(sess)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sess.onNavigate = func(url string) {
		if strings.HasSuffix(url, "/796") {
			cancel()
		}
	}

	res, err := h.walker(t, nil).Run(ctx, 200)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []int{795, 796}, ids(res))
	require.Equal(t, StopAborted, res.Stop)
	require.Equal(t, []int{796}, h.cursors.saves)
	require.True(t, sess.closed)
}

func TestWalkZeroQuota(t *testing.T) {
	h := newHarness(newFakeSession().valid(795))

	res, err := h.walker(t, nil).Run(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, res.Records)
	require.Equal(t, 0, h.opened)
	require.Empty(t, h.cursors.saves)
}
