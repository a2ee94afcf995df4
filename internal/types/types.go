package types

import (
	"slices"
	"time"
)

// FeedItem is one normalized news entry. Values are built once by the
// normalizer and must not be modified afterwards; the aggregator hands the
// same items to every reader of a snapshot.
type FeedItem struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Categories  []string `json:"categories"`
}

func (i FeedItem) HasCategory(category string) bool {
	return slices.Contains(i.Categories, category)
}

// ShareText is the payload handed to an external share action.
func (i FeedItem) ShareText() string {
	return "Check this out: " + i.Link
}

type FeedSource struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

func (s FeedSource) String() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL
}

// RawCategory is a category node as found in the document: the value of its
// term attribute (Atom) and its own inner text (RSS).
type RawCategory struct {
	Term string
	Text string
}

// RawItem bundles the unprocessed fragments of one item or entry node.
type RawItem struct {
	Title       string
	Link        string
	Description string
	Content     string
	Categories  []RawCategory
}

type Document struct {
	URL         string
	FinalURL    string
	ContentType string
	Body        []byte
}

type SourceOutcome struct {
	Source   FeedSource    `json:"source"`
	Format   string        `json:"format,omitempty"`
	Items    int           `json:"items"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

func (o SourceOutcome) Failed() bool {
	return o.Err != nil
}

type AggregationResult struct {
	RunID    string
	Items    []FeedItem
	Outcomes []SourceOutcome
}

func (r *AggregationResult) Failed() []SourceOutcome {
	failed := make([]SourceOutcome, 0)
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// AllFailed reports whether every configured source failed. An empty source
// list is not considered a failure.
func (r *AggregationResult) AllFailed() bool {
	if len(r.Outcomes) == 0 {
		return false
	}
	return len(r.Failed()) == len(r.Outcomes)
}
