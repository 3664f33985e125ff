package jobs

import (
	"espritjobs/lib/textutil"
)

var (
	titlePlaceholders       = []string{"unknown", "no title", "unknown title"}
	companyPlaceholders     = []string{"unknown", "unknown company", "no company"}
	descriptionPlaceholders = []string{"no description available", "no description", "unknown description"}
)

const minDescriptionLength = 20

// Indicators reports which of the core fields look like they were never
// found on the page.
type Indicators struct {
	Title       bool
	Company     bool
	Description bool
}

func (i Indicators) Count() int {
	n := 0
	for _, v := range []bool{i.Title, i.Company, i.Description} {
		if v {
			n++
		}
	}
	return n
}

func EmptyIndicators(r Record) Indicators {
	title := textutil.NormalizeName(r.Title)
	company := textutil.NormalizeName(r.Company)
	description := textutil.NormalizeName(r.Description)

	return Indicators{
		Title:   title == "" || textutil.MatchName(title, titlePlaceholders),
		Company: company == "" || textutil.MatchName(company, companyPlaceholders),
		Description: description == "" ||
			textutil.MatchName(description, descriptionPlaceholders) ||
			textutil.Length(description) < minDescriptionLength,
	}
}

// IsEmpty reports whether at least two of the three core fields are blank or
// placeholders. Pages like this are served for IDs that are not published
// yet, so an empty record ends the walk.
func IsEmpty(r Record) bool {
	return EmptyIndicators(r).Count() >= 2
}
