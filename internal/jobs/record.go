// Package jobs defines the scraped job posting record and the checks the
// walker runs against freshly extracted records.
package jobs

import (
	"strings"
	"time"

	"espritjobs/lib/textutil"
	"espritjobs/lib/timezone"
)

const (
	DescriptionLimit  = 1000
	RequirementsLimit = 500
)

// TimestampLayout is the layout of Record.ScrapedAt.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Placeholder values used when a field could not be located on the page.
const (
	DefaultTitle        = "Unknown Title"
	DefaultCompany      = "Unknown Company"
	DefaultLocation     = "Unknown Location"
	DefaultDescription  = "No description available"
	DefaultRequirements = "No requirements specified"
	DefaultPostedDate   = "Unknown Date"
)

// Record is one scraped job posting.
type Record struct {
	JobID          int     `json:"job_id"`
	Title          string  `json:"title"`
	Company        string  `json:"company"`
	Location       string  `json:"location"`
	Description    string  `json:"description"`
	Requirements   string  `json:"requirements"`
	PostedDate     string  `json:"posted_date"`
	URL            string  `json:"url"`
	ImageURL       *string `json:"image_url"`
	CompanyLogoURL *string `json:"company_logo_url"`
	EmploymentType *string `json:"employment_type"`
	Industry       *string `json:"industry"`
	JobFunction    *string `json:"job_function"`
	ClosingDate    *string `json:"closing_date"`
	AddedByName    *string `json:"added_by_name"`
	AddedByCompany *string `json:"added_by_company"`
	ScrapedAt      string  `json:"scraped_at"`
}

// Fields are the raw values read off a job page.
type Fields struct {
	Title          string
	Company        string
	Location       string
	Description    string
	Requirements   string
	PostedDate     string
	ImageURL       *string
	CompanyLogoURL *string
	EmploymentType *string
	Industry       *string
	JobFunction    *string
	ClosingDate    *string
	AddedByName    *string
	AddedByCompany *string
}

var now = timezone.Now

// NewRecord builds a record from extracted fields. Text is trimmed, the
// description and requirements are capped and the scrape timestamp is set.
func NewRecord(jobID int, url string, f Fields) Record {
	return Record{
		JobID:          jobID,
		Title:          strings.TrimSpace(f.Title),
		Company:        strings.TrimSpace(f.Company),
		Location:       strings.TrimSpace(f.Location),
		Description:    textutil.Truncate(strings.TrimSpace(f.Description), DescriptionLimit),
		Requirements:   textutil.Truncate(strings.TrimSpace(f.Requirements), RequirementsLimit),
		PostedDate:     strings.TrimSpace(f.PostedDate),
		URL:            url,
		ImageURL:       trimmed(f.ImageURL),
		CompanyLogoURL: trimmed(f.CompanyLogoURL),
		EmploymentType: trimmed(f.EmploymentType),
		Industry:       trimmed(f.Industry),
		JobFunction:    trimmed(f.JobFunction),
		ClosingDate:    trimmed(f.ClosingDate),
		AddedByName:    trimmed(f.AddedByName),
		AddedByCompany: trimmed(f.AddedByCompany),
		ScrapedAt:      now().Format(TimestampLayout),
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ScrapedTime parses ScrapedAt. Both the native layout and RFC 3339 are
// accepted so older record files stay readable.
func (r Record) ScrapedTime() (time.Time, bool) {
	for _, layout := range []string{TimestampLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		t, err := time.ParseInLocation(layout, r.ScrapedAt, timezone.Location)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Value dereferences an optional field, returning "" when it is absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
