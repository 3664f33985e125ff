package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t testing.TB) *FileCursorStore {
	store := NewFileCursorStore(filepath.Join(t.TempDir(), "scraper_state.json"), 795)
	store.now = func() time.Time {
		return time.Date(2025, time.October, 18, 8, 0, 0, 0, time.UTC)
	}
	return store
}

func TestLoadFallback(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		contents *string
	}{
		{name: "missing file"},
		{name: "corrupt file", contents: ptr("{not json")},
		{name: "missing key", contents: ptr(`{"total_runs": 4}`)},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			store := newTestStore(t)
			if test.contents != nil {
				require.NoError(t, os.WriteFile(store.Path, []byte(*test.contents), 0600))
			}
			require.Equal(t, Cursor{LastJobID: 795}, store.Load(ctx))
		})
	}
}

func ptr(s string) *string {
	return &s
}

func TestSaveIncrementsRuns(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, 798))
	cursor := store.Load(ctx)
	require.Equal(t, 798, cursor.LastJobID)
	require.Equal(t, 1, cursor.TotalRuns)
	require.Equal(t, "2025-10-18T08:00:00.000000", cursor.LastUpdated)

	require.NoError(t, store.Save(ctx, 812))
	cursor = store.Load(ctx)
	require.Equal(t, 812, cursor.LastJobID)
	require.Equal(t, 2, cursor.TotalRuns)

	contents, err := os.ReadFile(store.Path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(contents, &raw))
	require.ElementsMatch(t, []string{"last_job_id", "last_updated", "total_runs"}, keys(raw))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestSaveOverCorruptFile(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path, []byte("garbage"), 0600))

	require.NoError(t, store.Save(ctx, 900))
	cursor := store.Load(ctx)
	require.Equal(t, 900, cursor.LastJobID)
	require.Equal(t, 1, cursor.TotalRuns)
}

func TestSaveKeepsExternalRunCount(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path, []byte(`{"last_job_id": 850, "total_runs": 41}`), 0600))

	require.NoError(t, store.Save(ctx, 851))
	require.Equal(t, 42, store.Load(ctx).TotalRuns)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	existed, err := store.Reset()
	require.NoError(t, err)
	require.False(t, existed)

	require.NoError(t, store.Save(ctx, 820))
	existed, err = store.Reset()
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, Cursor{LastJobID: 795}, store.Load(ctx))
}
