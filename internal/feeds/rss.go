package feeds

import (
	"bytes"
	"encoding/xml"
	"time"

	"espritjobs/internal/jobs"
)

type rssDocument struct {
	XMLName      xml.Name   `xml:"rss"`
	Version      string     `xml:"version,attr"`
	ContentSpace string     `xml:"xmlns:content,attr"`
	AtomSpace    string     `xml:"xmlns:atom,attr"`
	Channel      rssChannel `xml:"channel"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Generator     string    `xml:"generator"`
	SelfLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length string `xml:"length,attr"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	Content     string        `xml:"content:encoded"`
	PubDate     string        `xml:"pubDate"`
	GUID        rssGUID       `xml:"guid"`
	Category    string        `xml:"category"`
	Enclosure   *rssEnclosure `xml:"enclosure"`
}

// RenderRSS renders an RSS 2.0 document with one item per record.
func RenderRSS(records []jobs.Record, opts Options, generatedAt time.Time) ([]byte, error) {
	doc := rssDocument{
		Version:      "2.0",
		ContentSpace: "http://purl.org/rss/1.0/modules/content/",
		AtomSpace:    "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         opts.Title,
			Link:          opts.HomePageURL,
			Description:   opts.Description,
			Language:      opts.Language,
			LastBuildDate: generatedAt.Format(time.RFC1123Z),
			Generator:     opts.Generator,
			SelfLink: atomLink{
				Href: opts.fileURL(RSSFile),
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: make([]rssItem, 0, len(records)),
		},
	}

	for _, r := range records {
		body := describe(r)
		item := rssItem{
			Title:       itemTitle(r),
			Link:        r.URL,
			Description: body,
			Content:     body,
			PubDate:     published(r, generatedAt).Format(time.RFC1123Z),
			GUID:        rssGUID{IsPermaLink: true, Value: r.URL},
			Category:    "Jobs",
		}
		if image := displayImage(r); image != "" {
			item.Enclosure = &rssEnclosure{URL: image, Type: "image/jpeg", Length: "0"}
		}
		doc.Channel.Items = append(doc.Channel.Items, item)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	err := enc.Encode(doc)
	if err != nil {
		return nil, err
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
