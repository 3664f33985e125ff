package feeds

import (
	"strconv"
	"strings"
	"time"

	"espritjobs/internal/jobs"
	"espritjobs/lib/fsutil"
	"espritjobs/lib/textutil"
)

const summaryLimit = 1000

type jsonFeedAuthor struct {
	Name string `json:"name"`
}

type jsonFeedItem struct {
	ID            string           `json:"id"`
	URL           string           `json:"url"`
	Title         string           `json:"title"`
	ContentHTML   string           `json:"content_html"`
	Summary       string           `json:"summary"`
	DatePublished string           `json:"date_published"`
	Authors       []jsonFeedAuthor `json:"authors"`
	Tags          []string         `json:"tags"`
	Image         string           `json:"image,omitempty"`
}

type jsonFeed struct {
	Version     string           `json:"version"`
	Title       string           `json:"title"`
	HomePageURL string           `json:"home_page_url"`
	FeedURL     string           `json:"feed_url"`
	Description string           `json:"description"`
	Language    string           `json:"language"`
	Authors     []jsonFeedAuthor `json:"authors"`
	Items       []jsonFeedItem   `json:"items"`
}

func summarize(r jobs.Record) string {
	text := r.Description
	if r.Requirements != "" && r.Requirements != jobs.DefaultRequirements {
		text += "\n\nRequirements: " + r.Requirements
	}
	return textutil.SmartTruncate(text, summaryLimit)
}

func tags(r jobs.Record) []string {
	out := []string{"jobs", "esprit"}
	for _, v := range []*string{r.EmploymentType, r.Industry} {
		if v != nil {
			out = append(out, strings.ToLower(*v))
		}
	}
	return out
}

// RenderJSONFeed renders a JSON Feed 1.1 document.
func RenderJSONFeed(records []jobs.Record, opts Options, generatedAt time.Time) ([]byte, error) {
	feed := jsonFeed{
		Version:     "https://jsonfeed.org/version/1.1",
		Title:       opts.Title,
		HomePageURL: opts.HomePageURL,
		FeedURL:     opts.fileURL(JSONFeedFile),
		Description: opts.Description,
		Language:    opts.Language,
		Authors:     []jsonFeedAuthor{{Name: opts.Author}},
		Items:       make([]jsonFeedItem, 0, len(records)),
	}

	for _, r := range records {
		feed.Items = append(feed.Items, jsonFeedItem{
			ID:            strconv.Itoa(r.JobID),
			URL:           r.URL,
			Title:         itemTitle(r),
			ContentHTML:   describe(r),
			Summary:       summarize(r),
			DatePublished: published(r, generatedAt).Format(time.RFC3339),
			Authors:       []jsonFeedAuthor{{Name: r.Company}},
			Tags:          tags(r),
			Image:         displayImage(r),
		})
	}
	return fsutil.MarshalIndent(feed)
}
