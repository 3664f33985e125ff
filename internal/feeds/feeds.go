// Package feeds renders collected job records as RSS, JSON Feed and a
// static HTML index.
package feeds

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"espritjobs/internal/jobs"
	"espritjobs/lib/fsutil"
	"espritjobs/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("espritjobs/feeds")

const (
	RSSFile      = "feed.xml"
	JSONFeedFile = "jobs.json"
	IndexFile    = "index.html"
)

type Options struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	HomePageURL string `json:"home_page_url"`
	// FeedURL is the public base url the generated files are served from.
	FeedURL   string `json:"feed_url"`
	Language  string `json:"language"`
	Generator string `json:"generator"`
	Author    string `json:"author"`
}

func DefaultOptions() Options {
	return Options{
		Title:       "ESPRIT Connect Jobs",
		Description: "Latest job opportunities from ESPRIT Connect",
		HomePageURL: "https://espritconnect.com",
		Language:    "en-us",
		Generator:   "espritjobs",
		Author:      "ESPRIT Connect",
	}
}

func (o Options) fileURL(name string) string {
	if o.FeedURL == "" {
		return name
	}
	return strings.TrimSuffix(o.FeedURL, "/") + "/" + name
}

var now = timezone.Now

// Generate writes every output into dir. Records are rendered as they are,
// missing optional fields are left out.
func Generate(ctx context.Context, records []jobs.Record, dir string, opts Options) error {
	ctx, span := tracer.Start(ctx, "feeds:Generate", trace.WithAttributes(
		attribute.Int("records", len(records)),
	))
	defer span.End()

	generatedAt := now()
	outputs := []struct {
		name   string
		render func([]jobs.Record, Options, time.Time) ([]byte, error)
	}{
		{name: RSSFile, render: RenderRSS},
		{name: JSONFeedFile, render: RenderJSONFeed},
		{name: IndexFile, render: RenderIndex},
	}

	for _, out := range outputs {
		contents, err := out.render(records, opts, generatedAt)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to render "+out.name)
			return fmt.Errorf("render %s: %w", out.name, err)
		}
		path := filepath.Join(dir, out.name)
		err = fsutil.WriteAtomic(path, contents)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to write "+out.name)
			return fmt.Errorf("write %s: %w", path, err)
		}
		slog.InfoContext(ctx, "generated feed", "path", path, "records", len(records))
	}
	return nil
}

func published(r jobs.Record, fallback time.Time) time.Time {
	t, ok := r.ScrapedTime()
	if !ok {
		return fallback
	}
	return t
}

// closingDay strips the label off a closing date.
func closingDay(r jobs.Record) string {
	value := jobs.Value(r.ClosingDate)
	if _, day, ok := strings.Cut(value, ":"); ok {
		return strings.TrimSpace(day)
	}
	return value
}

// displayImage prefers the company logo over the posting image.
func displayImage(r jobs.Record) string {
	if r.CompanyLogoURL != nil {
		return *r.CompanyLogoURL
	}
	return jobs.Value(r.ImageURL)
}

type detail struct {
	label string
	value string
}

func details(r jobs.Record) []detail {
	out := []detail{
		{label: "Company", value: r.Company},
		{label: "Location", value: r.Location},
	}
	optional := []struct {
		label string
		value *string
	}{
		{label: "Job Function", value: r.JobFunction},
		{label: "Employment Type", value: r.EmploymentType},
		{label: "Industry", value: r.Industry},
	}
	for _, o := range optional {
		if o.value != nil {
			out = append(out, detail{label: o.label, value: *o.value})
		}
	}
	if r.ClosingDate != nil {
		out = append(out, detail{label: "Closing Date", value: closingDay(r)})
	}
	return out
}

// describe renders the html body shared by the rss and json feed items.
func describe(r jobs.Record) string {
	var b strings.Builder
	if image := displayImage(r); image != "" {
		fmt.Fprintf(&b, `<p><img src="%s" alt="%s" style="max-width:200px"/></p>`, html.EscapeString(image), html.EscapeString(r.Company))
	}
	for _, d := range details(r) {
		fmt.Fprintf(&b, "<p><strong>%s:</strong> %s</p>", d.label, html.EscapeString(d.value))
	}
	if r.AddedByName != nil {
		by := html.EscapeString(*r.AddedByName)
		if r.AddedByCompany != nil {
			by += " (" + html.EscapeString(*r.AddedByCompany) + ")"
		}
		fmt.Fprintf(&b, "<p><strong>Added by:</strong> %s</p>", by)
	}
	fmt.Fprintf(&b, "<p><strong>Description:</strong></p><p>%s</p>", html.EscapeString(r.Description))
	if r.Requirements != "" && r.Requirements != jobs.DefaultRequirements {
		fmt.Fprintf(&b, "<p><strong>Requirements:</strong></p><p>%s</p>", html.EscapeString(r.Requirements))
	}
	fmt.Fprintf(&b, `<p><a href="%s">View on ESPRIT Connect</a></p>`, html.EscapeString(r.URL))
	return b.String()
}

func itemTitle(r jobs.Record) string {
	return fmt.Sprintf("%s - %s", r.Title, r.Company)
}
