package rss

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	xhtml "golang.org/x/net/html"

	"newsly/internal/types"
)

const (
	FormatRSS     = "rss"
	FormatAtom    = "atom"
	FormatJSON    = "json"
	FormatUnknown = "unknown"
)

var (
	cdataPattern       = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	selfClosingPattern = regexp.MustCompile(`<([A-Za-z][\w:.\-]*)(\s[^<>]*?)?\s*/>`)
)

// Parser locates RSS item and Atom entry nodes with a forgiving HTML parser,
// so broken feeds still yield whatever items can be recovered.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse returns the raw fragments of every item/entry node in document
// order. A document without such nodes yields an empty slice. Only an
// unreadable input is an error.
func (p *Parser) Parse(r io.Reader) ([]types.RawItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(prepare(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	nodes := doc.Find("item, entry")
	items := make([]types.RawItem, 0, nodes.Length())
	nodes.Each(func(_ int, s *goquery.Selection) {
		items = append(items, extractItem(s))
	})

	return items, nil
}

// prepare rewrites the two XML constructs the HTML tokenizer mishandles:
// CDATA sections become escaped text and self-closing tags get an explicit
// end tag so they do not swallow their siblings.
func prepare(data []byte) []byte {
	data = cdataPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		inner := cdataPattern.FindSubmatch(m)[1]
		return []byte(html.EscapeString(string(inner)))
	})
	return selfClosingPattern.ReplaceAll(data, []byte("<${1}${2}></${1}>"))
}

func extractItem(s *goquery.Selection) types.RawItem {
	return types.RawItem{
		Title:       strings.TrimSpace(firstText(s, "title")),
		Link:        extractLink(s),
		Description: firstText(s, "description", "summary"),
		Content:     firstText(s, "content"),
		Categories:  extractCategories(s),
	}
}

// firstText returns the text of the first tag present, trying names in order.
func firstText(s *goquery.Selection, names ...string) string {
	for _, name := range names {
		if found := s.Find(name).First(); found.Length() > 0 {
			return found.Text()
		}
	}
	return ""
}

func extractLink(s *goquery.Selection) string {
	var chosen, fallback string

	s.Find("link").EachWithBreak(func(_ int, l *goquery.Selection) bool {
		if href := strings.TrimSpace(l.AttrOr("href", "")); href != "" {
			rel := strings.ToLower(strings.TrimSpace(l.AttrOr("rel", "alternate")))
			if rel == "alternate" {
				chosen = href
				return false
			}
			if fallback == "" {
				fallback = href
			}
			return true
		}

		if text := linkText(l); text != "" {
			chosen = text
			return false
		}
		return true
	})

	if chosen != "" {
		return chosen
	}
	return fallback
}

// linkText handles RSS <link>url</link>: link is a void element for the HTML
// parser, so the URL lands in the text node right after it.
func linkText(l *goquery.Selection) string {
	if text := strings.TrimSpace(l.Text()); text != "" {
		return text
	}

	for n := l.Get(0).NextSibling; n != nil && n.Type == xhtml.TextNode; n = n.NextSibling {
		if text := strings.TrimSpace(n.Data); text != "" {
			return text
		}
	}
	return ""
}

func extractCategories(s *goquery.Selection) []types.RawCategory {
	var categories []types.RawCategory
	s.Find("category").Each(func(_ int, c *goquery.Selection) {
		categories = append(categories, types.RawCategory{
			Term: c.AttrOr("term", ""),
			Text: ownText(c),
		})
	})
	return categories
}

func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for n := s.Get(0).FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xhtml.TextNode {
			b.WriteString(n.Data)
		}
	}
	return b.String()
}

// DetectFormat names the feed dialect of a document for diagnostics.
func DetectFormat(body []byte) string {
	switch gofeed.DetectFeedType(bytes.NewReader(body)) {
	case gofeed.FeedTypeRSS:
		return FormatRSS
	case gofeed.FeedTypeAtom:
		return FormatAtom
	case gofeed.FeedTypeJSON:
		return FormatJSON
	default:
		return FormatUnknown
	}
}
