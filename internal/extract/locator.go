package extract

import (
	"net/url"
	"strings"

	"espritjobs/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Reader pulls a string out of a matched element.
type Reader func(sel *goquery.Selection) string

// ReadText reads the element's text with whitespace collapsed.
func ReadText(sel *goquery.Selection) string {
	return textutil.Collapse(sel.Text())
}

// ReadAttr reads an attribute of the element.
func ReadAttr(name string) Reader {
	return func(sel *goquery.Selection) string {
		return strings.TrimSpace(sel.AttrOr(name, ""))
	}
}

// Locator is a css selector paired with the reader applied to its first
// match.
type Locator struct {
	Selector string
	Read     Reader
}

func Text(selector string) Locator {
	return Locator{Selector: selector, Read: ReadText}
}

func Attr(selector, attr string) Locator {
	return Locator{Selector: selector, Read: ReadAttr(attr)}
}

// Chain is an ordered list of locators, earlier locators are more specific.
type Chain []Locator

// First evaluates the chain in order and returns the value of the first
// locator whose first matching element yields non-empty text. Locators
// after the first success are not consulted.
func (c Chain) First(root *goquery.Selection) (string, bool) {
	for _, loc := range c {
		match := root.Find(loc.Selector).First()
		if match.Length() == 0 {
			continue
		}
		read := loc.Read
		if read == nil {
			read = ReadText
		}
		value := read(match)
		if value != "" {
			return value, true
		}
	}
	return "", false
}

// Text returns the chain's value or def when nothing matched.
func (c Chain) Text(root *goquery.Selection, def string) string {
	value, ok := c.First(root)
	if !ok {
		return def
	}
	return value
}

// Optional returns the chain's value or nil when nothing matched.
func (c Chain) Optional(root *goquery.Selection) *string {
	value, ok := c.First(root)
	if !ok {
		return nil
	}
	return &value
}

// ImageURL returns the chain's value resolved against base. Values that
// already start with "http" are returned unchanged.
func (c Chain) ImageURL(root *goquery.Selection, base *url.URL) *string {
	value, ok := c.First(root)
	if !ok {
		return nil
	}
	resolved := ResolveURL(base, value)
	return &resolved
}

func ResolveURL(base *url.URL, ref string) string {
	if strings.HasPrefix(ref, "http") || base == nil {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}
