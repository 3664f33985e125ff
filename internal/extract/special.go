package extract

import (
	"strings"

	"espritjobs/lib/htmlutil"
	"espritjobs/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

const closingDateLabel = "Closing date for applications:"

// ClosingDate finds the first text node mentioning the application
// deadline and returns it whole, label included.
func ClosingDate(root *goquery.Selection) *string {
	for _, n := range root.Nodes {
		node, ok := htmlutil.FindTextNode(n, closingDateLabel)
		if !ok {
			continue
		}
		text := textutil.Collapse(node.Data)
		if text == "" {
			return nil
		}
		return &text
	}
	return nil
}

// AddedBy reads the name and organization of the person who posted the
// job from the "Added by" section.
func AddedBy(root *goquery.Selection) (name *string, company *string) {
	heading := root.Find("h4.gw-section-caption").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == "Added by"
	}).First()
	if heading.Length() == 0 {
		return nil, nil
	}

	section := heading.Parent()
	return nonEmpty(section.Find(".gw-name").First()), nonEmpty(section.Find(".gw-descr").First())
}

func nonEmpty(sel *goquery.Selection) *string {
	if sel.Length() == 0 {
		return nil
	}
	text := textutil.Collapse(sel.Text())
	if text == "" {
		return nil
	}
	return &text
}
