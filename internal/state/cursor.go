// Package state persists where the walk stopped and tracks which job IDs
// are already known.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"espritjobs/lib/fsutil"
	"espritjobs/lib/timezone"
)

// Cursor is the persisted resume point of the walk.
type Cursor struct {
	LastJobID   int    `json:"last_job_id"`
	LastUpdated string `json:"last_updated"`
	TotalRuns   int    `json:"total_runs"`
}

type cursorFile struct {
	LastJobID   *int   `json:"last_job_id"`
	LastUpdated string `json:"last_updated"`
	TotalRuns   int    `json:"total_runs"`
}

// FileCursorStore keeps the cursor in a small JSON file.
type FileCursorStore struct {
	Path      string
	InitialID int

	now func() time.Time
}

func NewFileCursorStore(path string, initialID int) *FileCursorStore {
	return &FileCursorStore{Path: path, InitialID: initialID, now: timezone.Now}
}

func (s *FileCursorStore) read() (cursorFile, error) {
	var out cursorFile
	contents, err := os.ReadFile(s.Path)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(contents, &out)
	return out, err
}

// Load returns the persisted cursor. A missing, unreadable or incomplete
// file yields a cursor at the initial ID with no runs; it is never an error.
func (s *FileCursorStore) Load(ctx context.Context) Cursor {
	fallback := Cursor{LastJobID: s.InitialID}

	persisted, err := s.read()
	if errors.Is(err, os.ErrNotExist) {
		slog.InfoContext(ctx, "no previous state found, starting from initial job id", "job_id", s.InitialID)
		return fallback
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to read state file, starting from initial job id", "path", s.Path, "err", err)
		return fallback
	}
	if persisted.LastJobID == nil {
		slog.WarnContext(ctx, "state file has no last_job_id, starting from initial job id", "path", s.Path)
		return fallback
	}

	cursor := Cursor{
		LastJobID:   *persisted.LastJobID,
		LastUpdated: persisted.LastUpdated,
		TotalRuns:   persisted.TotalRuns,
	}
	slog.InfoContext(
		ctx, "loaded state",
		"last_job_id", cursor.LastJobID,
		"last_updated", cursor.LastUpdated,
		"total_runs", cursor.TotalRuns,
	)
	return cursor
}

// Save persists lastID. The run counter is read from the file currently on
// disk and incremented, an unreadable file counts as zero runs.
func (s *FileCursorStore) Save(ctx context.Context, lastID int) error {
	runs := 0
	previous, err := s.read()
	if err == nil {
		runs = previous.TotalRuns
	}

	now := timezone.Now
	if s.now != nil {
		now = s.now
	}
	cursor := Cursor{
		LastJobID:   lastID,
		LastUpdated: now().Format("2006-01-02T15:04:05.000000"),
		TotalRuns:   runs + 1,
	}
	err = fsutil.WriteJSON(s.Path, cursor)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	slog.InfoContext(ctx, "saved state", "last_job_id", lastID, "total_runs", cursor.TotalRuns)
	return nil
}

// Reset removes the state file and reports whether one existed.
func (s *FileCursorStore) Reset() (bool, error) {
	err := os.Remove(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
