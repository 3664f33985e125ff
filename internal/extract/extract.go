// Package extract turns a rendered job page into a jobs.Record.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"espritjobs/internal/jobs"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("espritjobs/extract")

type Extractor struct {
	BaseURL *url.URL
	Schema  Schema
}

func NewExtractor(baseURL string) (Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return Extractor{}, fmt.Errorf("parse base url: %w", err)
	}
	return Extractor{BaseURL: base, Schema: DefaultSchema()}, nil
}

// Extract parses a job page and builds the record for jobID. Fields that
// cannot be found fall back to their placeholders, only an unparseable
// document is an error.
func (e Extractor) Extract(ctx context.Context, jobID int, jobURL string, page []byte) (jobs.Record, error) {
	ctx, span := tracer.Start(ctx, "extract:Extract", trace.WithAttributes(
		attribute.Int("job_id", jobID),
	))
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return jobs.Record{}, fmt.Errorf("parse job page %d: %w", jobID, err)
	}

	record := jobs.NewRecord(jobID, jobURL, e.Fields(doc.Selection))
	span.SetAttributes(
		attribute.String("title", record.Title),
		attribute.String("company", record.Company),
	)
	return record, nil
}

// Fields reads every field of the schema from root.
func (e Extractor) Fields(root *goquery.Selection) jobs.Fields {
	s := e.Schema
	f := jobs.Fields{
		Title:          s.Title.Text(root, jobs.DefaultTitle),
		Company:        s.Company.Text(root, jobs.DefaultCompany),
		Location:       s.Location.Text(root, jobs.DefaultLocation),
		Description:    s.Description.Text(root, jobs.DefaultDescription),
		Requirements:   s.Requirements.Text(root, jobs.DefaultRequirements),
		PostedDate:     s.PostedDate.Text(root, jobs.DefaultPostedDate),
		ImageURL:       s.Image.ImageURL(root, e.BaseURL),
		CompanyLogoURL: s.CompanyLogo.ImageURL(root, e.BaseURL),
		EmploymentType: s.EmploymentType.Optional(root),
		Industry:       s.Industry.Optional(root),
		ClosingDate:    ClosingDate(root),
	}
	f.AddedByName, f.AddedByCompany = AddedBy(root)

	// the first location slot holds the job function when the page also
	// renders a street location
	if actual, ok := s.ActualLocation.First(root); ok {
		function := f.Location
		f.JobFunction = &function
		f.Location = actual
	}
	return f
}
