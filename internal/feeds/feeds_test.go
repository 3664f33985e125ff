package feeds

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"espritjobs/internal/jobs"

	"github.com/stretchr/testify/require"
)

func ptr(s string) *string {
	return &s
}

var generatedAt = time.Date(2025, time.October, 18, 12, 0, 0, 0, time.UTC)

func testRecords() []jobs.Record {
	return []jobs.Record{
		{
			JobID:          795,
			Title:          "Data Engineer",
			Company:        "Acme & Sons",
			Location:       "Tunis",
			Description:    "Build <pipelines> for analytics.",
			Requirements:   jobs.DefaultRequirements,
			PostedDate:     jobs.DefaultPostedDate,
			URL:            "https://espritconnect.com/jobs/795",
			ImageURL:       ptr("https://espritconnect.com/img/795.png"),
			CompanyLogoURL: ptr("https://espritconnect.com/logo/acme.png"),
			EmploymentType: ptr("Full-time"),
			ClosingDate:    ptr("Closing date for applications: 31/10/2025"),
			AddedByName:    ptr("Amira"),
			AddedByCompany: ptr("Acme"),
			ScrapedAt:      "2025-10-17T09:30:00.000000",
		},
		{
			JobID:        796,
			Title:        "Intern",
			Company:      "Globex",
			Location:     "Sfax",
			Description:  strings.Repeat("lorem ipsum ", 200),
			Requirements: "Curiosity",
			URL:          "https://espritconnect.com/jobs/796",
			ScrapedAt:    "garbage",
		},
	}
}

func TestRenderRSS(t *testing.T) {
	opts := DefaultOptions()
	opts.FeedURL = "https://jobs.example.com/"

	out, err := RenderRSS(testRecords(), opts, generatedAt)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), xml.Header))
	require.Contains(t, string(out), `xmlns:content="http://purl.org/rss/1.0/modules/content/"`)
	require.Contains(t, string(out), `<atom:link href="https://jobs.example.com/feed.xml" rel="self" type="application/rss+xml">`)

	var parsed struct {
		Channel struct {
			Title string `xml:"title"`
			Items []struct {
				Title       string `xml:"title"`
				Link        string `xml:"link"`
				Description string `xml:"description"`
				PubDate     string `xml:"pubDate"`
				GUID        string `xml:"guid"`
				Enclosure   struct {
					URL string `xml:"url,attr"`
				} `xml:"enclosure"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	require.NoError(t, xml.Unmarshal(out, &parsed))
	require.Equal(t, "ESPRIT Connect Jobs", parsed.Channel.Title)
	require.Len(t, parsed.Channel.Items, 2)

	first := parsed.Channel.Items[0]
	require.Equal(t, "Data Engineer - Acme & Sons", first.Title)
	require.Equal(t, "https://espritconnect.com/jobs/795", first.GUID)
	require.Equal(t, "https://espritconnect.com/logo/acme.png", first.Enclosure.URL)
	require.Contains(t, first.Description, "Build &lt;pipelines&gt; for analytics.")
	require.Contains(t, first.Description, "<strong>Closing Date:</strong> 31/10/2025")
	require.Contains(t, first.Description, "<strong>Added by:</strong> Amira (Acme)")
	require.NotContains(t, first.Description, "Requirements:")
	require.Contains(t, first.PubDate, "17 Oct 2025 09:30:00")

	second := parsed.Channel.Items[1]
	require.Empty(t, second.Enclosure.URL)
	require.Equal(t, generatedAt.Format(time.RFC1123Z), second.PubDate)
	require.Contains(t, second.Description, "<strong>Requirements:</strong>")
}

func TestRenderJSONFeed(t *testing.T) {
	out, err := RenderJSONFeed(testRecords(), DefaultOptions(), generatedAt)
	require.NoError(t, err)

	var feed struct {
		Version string `json:"version"`
		FeedURL string `json:"feed_url"`
		Items   []struct {
			ID      string   `json:"id"`
			Summary string   `json:"summary"`
			Image   string   `json:"image"`
			Tags    []string `json:"tags"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(out, &feed))
	require.Equal(t, "https://jsonfeed.org/version/1.1", feed.Version)
	require.Equal(t, "jobs.json", feed.FeedURL)
	require.Len(t, feed.Items, 2)

	require.Equal(t, "795", feed.Items[0].ID)
	require.Equal(t, []string{"jobs", "esprit", "full-time"}, feed.Items[0].Tags)
	require.Equal(t, "Build <pipelines> for analytics.", feed.Items[0].Summary)

	require.Empty(t, feed.Items[1].Image)
	require.True(t, strings.HasSuffix(feed.Items[1].Summary, "..."))
	require.LessOrEqual(t, len([]rune(feed.Items[1].Summary)), summaryLimit+3)
}

func TestRenderIndex(t *testing.T) {
	records := testRecords()
	records[1].Title = `<script>alert("x")</script>`

	out, err := RenderIndex(records, DefaultOptions(), generatedAt)
	require.NoError(t, err)
	page := string(out)

	require.NotContains(t, page, `<script>alert`)
	require.Contains(t, page, "&lt;script&gt;")
	require.Contains(t, page, "closes 31/10/2025")
	require.Less(t, strings.Index(page, "Globex"), strings.Index(page, "Acme &amp; Sons"), "newest records come first")

	empty, err := RenderIndex(nil, DefaultOptions(), generatedAt)
	require.NoError(t, err)
	require.Contains(t, string(empty), "No jobs collected yet.")
}

func TestGenerate(t *testing.T) {
	previous := now
	now = func() time.Time { return generatedAt }
	defer func() { now = previous }()

	dir := filepath.Join(t.TempDir(), "public")
	records := testRecords()
	before := testRecords()

	require.NoError(t, Generate(context.Background(), records, dir, DefaultOptions()))
	for _, name := range []string{RSSFile, JSONFeedFile, IndexFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		require.Greater(t, info.Size(), int64(0))
	}
	require.Equal(t, before, records, "records must not be modified")
}
