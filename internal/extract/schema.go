package extract

// Schema lists the locator chains used for every field of a job page.
type Schema struct {
	Title          Chain
	Company        Chain
	Location       Chain
	ActualLocation Chain
	Description    Chain
	Requirements   Chain
	PostedDate     Chain
	Image          Chain
	CompanyLogo    Chain
	EmploymentType Chain
	Industry       Chain
}

// DefaultSchema returns the chains for espritconnect job pages: the ids the
// Angular front end renders first, generic class names after.
func DefaultSchema() Schema {
	return Schema{
		Title: Chain{
			Text("#jobPageJobTitle"),
			Text("h2#jobPageJobTitle"),
			Text("h1.job-title"),
			Text(".job-header h1"),
			Text(".job-details h1"),
			Text("h1"),
			Text("h2"),
			Text(".title"),
		},
		Company: Chain{
			Text("#jobPageOrganization_0"),
			Text("p#jobPageOrganization_0"),
			Text(".company-name"),
			Text(".job-company"),
			Text(".employer"),
			Text(".company"),
		},
		Location: Chain{
			Text("#jobPageJobFunction_0"),
			Text("p#jobPageJobFunction_0"),
			Text(".job-location"),
			Text(".location"),
			Text(".job-address"),
		},
		ActualLocation: Chain{
			Text(".location-address"),
			Text(".location-icon-text"),
		},
		Description: Chain{
			Text("#jobPageDescription"),
			Text("div#jobPageDescription"),
			Text(".job-description"),
			Text(".description"),
			Text(".job-content"),
			Text(".content"),
		},
		Requirements: Chain{
			Text(".job-requirements"),
			Text(".requirements"),
			Text(".job-qualifications"),
			Text(".qualifications"),
		},
		PostedDate: Chain{
			Text(".posted-date"),
			Text(".job-date"),
			Text(".publication-date"),
		},
		Image: Chain{
			Attr(".job-image img", "src"),
			Attr(".company-logo img", "src"),
			Attr(".job-header img", "src"),
		},
		CompanyLogo: Chain{
			Attr(".gw-company-logo img", "src"),
			Attr(".company-logo-position", "src"),
		},
		EmploymentType: Chain{
			Text("#jobPageOrganization_2"),
			Text("p#jobPageOrganization_2"),
		},
		Industry: Chain{
			Text("#jobPageJobFunction_2"),
			Text("p#jobPageJobFunction_2"),
		},
	}
}
