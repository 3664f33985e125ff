package store

import (
	"path/filepath"

	"espritjobs/internal/jobs"
	"espritjobs/lib/fsutil"
)

type SummaryEntry struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

// Summary describes one run.
type Summary struct {
	RunID             string         `json:"run_id"`
	TotalJobs         int            `json:"total_jobs"`
	TotalRecords      int            `json:"total_records"`
	SessionStartJobID int            `json:"session_start_job_id"`
	SessionEndJobID   int            `json:"session_end_job_id"`
	NextJobID         int            `json:"next_job_id"`
	StopReason        string         `json:"stop_reason"`
	ScrapedAt         string         `json:"scraped_at"`
	Jobs              []SummaryEntry `json:"jobs"`
}

func NewSummaryEntries(records []jobs.Record) []SummaryEntry {
	out := make([]SummaryEntry, 0, len(records))
	for _, r := range records {
		out = append(out, SummaryEntry{ID: r.JobID, Title: r.Title, Company: r.Company})
	}
	return out
}

// WriteSummary writes summary.json into dir.
func WriteSummary(dir string, s Summary) (string, error) {
	path := filepath.Join(dir, "summary.json")
	if s.Jobs == nil {
		s.Jobs = []SummaryEntry{}
	}
	return path, fsutil.WriteJSON(path, s)
}
