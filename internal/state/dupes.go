package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
)

// DuplicateSet holds the job IDs that were already collected.
type DuplicateSet map[int]struct{}

func NewDuplicateSet(ids ...int) DuplicateSet {
	set := make(DuplicateSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s DuplicateSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

func (s DuplicateSet) Add(id int) {
	s[id] = struct{}{}
}

func (s DuplicateSet) Len() int {
	return len(s)
}

// IDs returns the members in ascending order.
func (s DuplicateSet) IDs() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// ReadRecordIDs reads the job_id of every entry of a records file.
// Entries without a job_id are ignored.
func ReadRecordIDs(path string) ([]int, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []struct {
		JobID *int `json:"job_id"`
	}
	err = json.Unmarshal(contents, &entries)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		if e.JobID != nil {
			ids = append(ids, *e.JobID)
		}
	}
	return ids, nil
}

// SeedFromRecordFiles builds the set from the first candidate file that
// exists, parses and contains at least one ID. No usable file yields an
// empty set.
func SeedFromRecordFiles(paths ...string) DuplicateSet {
	for _, path := range paths {
		ids, err := ReadRecordIDs(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			slog.Warn("could not load existing job ids", "path", path, "err", err)
			continue
		}
		if len(ids) == 0 {
			continue
		}
		slog.Info("loaded existing job ids", "path", path, "count", len(ids))
		return NewDuplicateSet(ids...)
	}
	return NewDuplicateSet()
}
