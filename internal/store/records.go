// Package store persists collected job records.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"espritjobs/internal/jobs"
	"espritjobs/lib/fsutil"
	"espritjobs/lib/timezone"
)

var ErrCorruptRecords = errors.New("records file is corrupt")

// RecordFile is the JSON array of every record collected so far.
type RecordFile struct {
	Path string
}

// Load reads the records file. A missing file is an empty list.
func (f RecordFile) Load() ([]jobs.Record, error) {
	contents, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []jobs.Record
	err = json.Unmarshal(contents, &records)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrCorruptRecords, f.Path, err)
	}
	return records, nil
}

// Merge appends the records of added whose ID is not in existing yet,
// keeping the order of both lists.
func Merge(existing, added []jobs.Record) ([]jobs.Record, int) {
	seen := make(map[int]struct{}, len(existing)+len(added))
	out := make([]jobs.Record, 0, len(existing)+len(added))
	for _, r := range existing {
		seen[r.JobID] = struct{}{}
		out = append(out, r)
	}
	appended := 0
	for _, r := range added {
		if _, ok := seen[r.JobID]; ok {
			continue
		}
		seen[r.JobID] = struct{}{}
		out = append(out, r)
		appended++
	}
	return out, appended
}

// quarantine moves an unreadable records file aside so the next write starts
// a fresh list.
func (f RecordFile) quarantine() (string, error) {
	aside := fmt.Sprintf("%s.corrupt-%s", f.Path, timezone.Now().Format("20060102-150405"))
	err := os.Rename(f.Path, aside)
	if err != nil {
		return "", fmt.Errorf("move aside %s: %w", f.Path, err)
	}
	return aside, nil
}

// Append merges added into the file and returns the full list as written. A
// file that does not parse is renamed to <path>.corrupt-<time> and replaced
// by a list holding only added.
func (f RecordFile) Append(added []jobs.Record) ([]jobs.Record, error) {
	existing, err := f.Load()
	if errors.Is(err, ErrCorruptRecords) {
		aside, moveErr := f.quarantine()
		if moveErr != nil {
			return nil, errors.Join(err, moveErr)
		}
		slog.Warn("records file is corrupt, moved it aside and starting a new one", "path", f.Path, "moved_to", aside, "err", err)
		existing = nil
	} else if err != nil {
		return nil, err
	}
	merged, _ := Merge(existing, added)
	err = f.Save(merged)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (f RecordFile) Save(records []jobs.Record) error {
	if records == nil {
		records = []jobs.Record{}
	}
	err := fsutil.WriteJSON(f.Path, records)
	if err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}
