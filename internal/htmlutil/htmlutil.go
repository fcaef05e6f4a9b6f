// Package htmlutil extracts page metadata used to describe media links.
package htmlutil

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/happyhackingspace/intent/internal/textutil"
)

// LoadHTML parses HTML from r into a goquery Document.
func LoadHTML(r io.Reader) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(r)
}

// LoadHTMLString parses an HTML string into a goquery Document.
func LoadHTMLString(htmlStr string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
}

// MetaContent returns the content of the first <meta> whose property or
// name attribute equals key, or "" if there is none.
func MetaContent(doc *goquery.Document, key string) string {
	var content string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		prop, _ := s.Attr("property")
		name, _ := s.Attr("name")
		if !strings.EqualFold(prop, key) && !strings.EqualFold(name, key) {
			return true
		}
		content, _ = s.Attr("content")
		content = clean(content)
		return content == ""
	})
	return content
}

// PageTitle returns the page's og:title, falling back to <title>.
// Whitespace is collapsed; "" means the page has no usable title.
func PageTitle(doc *goquery.Document) string {
	if title := MetaContent(doc, "og:title"); title != "" {
		return title
	}
	return clean(doc.Find("title").First().Text())
}

func clean(s string) string {
	return strings.TrimSpace(textutil.NormalizeWhitespaces(s))
}
