package rss

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"

	"newsly/internal/types"
)

const maxStripPasses = 4

var (
	htmlStripper  = bluemonday.StrictPolicy()
	entityPattern = regexp.MustCompile(`&(?:[A-Za-z][A-Za-z0-9]*|#[0-9]+|#[xX][0-9A-Fa-f]+);`)

	// Block level tags are replaced by a space before stripping, otherwise
	// "<p>a</p><p>b</p>" would collapse into "ab".
	blockTagPattern = regexp.MustCompile(`(?i)</?(?:p|div|br|hr|li|ul|ol|dl|dt|dd|h[1-6]|blockquote|pre|table|tr|td|th|section|article|header|footer|figure|figcaption)\b[^>]*>`)
)

// Normalize turns the raw fragments of one entry into a FeedItem. base is
// the URL the document was finally served from and may be nil. It never
// fails: unusable fragments become empty values.
func Normalize(raw types.RawItem, base *url.URL) types.FeedItem {
	return types.FeedItem{
		Title:       strings.TrimSpace(raw.Title),
		Link:        resolveLink(raw.Link, base),
		Description: stripHTML(raw.Description),
		Content:     stripHTML(raw.Content),
		Categories:  normalizeCategories(raw.Categories),
	}
}

// stripHTML keeps only the rendered text of a markup fragment. Further passes
// handle producers that escape their markup or entities more than once.
func stripHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	for range maxStripPasses {
		s = blockTagPattern.ReplaceAllString(s, " ")
		s = html.UnescapeString(htmlStripper.Sanitize(s))
		if !strings.Contains(s, "<") && !entityPattern.MatchString(s) {
			break
		}
	}

	s = strings.Join(strings.Fields(s), " ")
	return norm.NFC.String(s)
}

func resolveLink(link string, base *url.URL) string {
	link = strings.TrimSpace(link)
	if link == "" || base == nil {
		return link
	}

	ref, err := url.Parse(link)
	if err != nil || ref.IsAbs() {
		return link
	}
	return base.ResolveReference(ref).String()
}

// normalizeCategories prefers the term attribute over inner text, drops
// empty labels and keeps the first occurrence of each label.
func normalizeCategories(raw []types.RawCategory) []string {
	categories := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, c := range raw {
		label := strings.TrimSpace(c.Term)
		if label == "" {
			label = strings.TrimSpace(c.Text)
		}
		if label == "" {
			continue
		}

		label = norm.NFC.String(label)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		categories = append(categories, label)
	}

	return categories
}
