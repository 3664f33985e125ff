package feeds

import (
	"bytes"
	"html/template"
	"time"

	"espritjobs/internal/jobs"
	"espritjobs/lib/textutil"
)

const previewLimit = 300

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <link rel="alternate" type="application/rss+xml" title="{{.Title}}" href="{{.RSSURL}}">
  <link rel="alternate" type="application/feed+json" title="{{.Title}}" href="{{.JSONFeedURL}}">
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; max-width: 1100px; margin: 0 auto; padding: 20px; background: #f5f6f8; color: #222; }
    header { background: #c8102e; color: #fff; padding: 24px; border-radius: 8px; }
    .stats { display: flex; gap: 24px; margin: 16px 0; }
    .feeds a { margin-right: 12px; }
    .job { background: #fff; border-radius: 8px; padding: 16px; margin: 12px 0; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
    .job img { max-width: 80px; float: right; }
    .meta { color: #555; font-size: 0.9em; }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <p>{{.Description}}</p>
  </header>
  <div class="stats">
    <div><strong>{{len .Jobs}}</strong> jobs</div>
    <div>Updated {{.GeneratedAt}}</div>
  </div>
  <div class="feeds">
    <a href="{{.RSSURL}}">RSS feed</a>
    <a href="{{.JSONFeedURL}}">JSON feed</a>
  </div>
  {{range .Jobs}}
  <article class="job">
    {{if .Image}}<img src="{{.Image}}" alt="{{.Company}}">{{end}}
    <h2><a href="{{.URL}}">{{.Title}}</a></h2>
    <p class="meta">{{.Company}} · {{.Location}}{{if .ClosingDate}} · closes {{.ClosingDate}}{{end}}</p>
    <p>{{.Preview}}</p>
  </article>
  {{else}}
  <p>No jobs collected yet.</p>
  {{end}}
</body>
</html>
`))

type indexJob struct {
	Title       string
	Company     string
	Location    string
	URL         string
	Image       string
	ClosingDate string
	Preview     string
}

type indexPage struct {
	Title       string
	Description string
	GeneratedAt string
	RSSURL      string
	JSONFeedURL string
	Jobs        []indexJob
}

// RenderIndex renders a static page listing every record, newest first.
func RenderIndex(records []jobs.Record, opts Options, generatedAt time.Time) ([]byte, error) {
	page := indexPage{
		Title:       opts.Title,
		Description: opts.Description,
		GeneratedAt: generatedAt.Format("2006-01-02 15:04"),
		RSSURL:      opts.fileURL(RSSFile),
		JSONFeedURL: opts.fileURL(JSONFeedFile),
		Jobs:        make([]indexJob, 0, len(records)),
	}
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		page.Jobs = append(page.Jobs, indexJob{
			Title:       r.Title,
			Company:     r.Company,
			Location:    r.Location,
			URL:         r.URL,
			Image:       displayImage(r),
			ClosingDate: closingDay(r),
			Preview:     textutil.SmartTruncate(r.Description, previewLimit),
		})
	}

	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, page)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
