package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestFetchError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("source 2: %w", NewFetchError("http://example.com/feed", cause))

	if !IsFetchError(err) {
		t.Fatalf("Expected wrapped FetchError to be detected")
	}
	if IsParseError(err) {
		t.Errorf("FetchError must not be reported as ParseError")
	}
	if !errors.Is(err, cause) {
		t.Errorf("Expected cause to be reachable through Unwrap")
	}

	status := NewStatusError("http://example.com/feed", 503)
	if status.Error() != "fetch http://example.com/feed: unexpected status 503" {
		t.Errorf("Unexpected message: %s", status.Error())
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("http://example.com/feed", errors.New("unexpected EOF"))
	if !IsParseError(err) {
		t.Fatalf("Expected ParseError to be detected")
	}
	if IsFetchError(err) {
		t.Errorf("ParseError must not be reported as FetchError")
	}
}

func TestAggregationResult_Failed(t *testing.T) {
	tests := []struct {
		name      string
		outcomes  []SourceOutcome
		failed    int
		allFailed bool
	}{
		{
			name:      "no sources",
			outcomes:  nil,
			failed:    0,
			allFailed: false,
		},
		{
			name: "partial failure",
			outcomes: []SourceOutcome{
				{Source: FeedSource{URL: "a"}, Items: 3},
				{Source: FeedSource{URL: "b"}, Err: errors.New("boom")},
			},
			failed:    1,
			allFailed: false,
		},
		{
			name: "total failure",
			outcomes: []SourceOutcome{
				{Source: FeedSource{URL: "a"}, Err: errors.New("boom")},
				{Source: FeedSource{URL: "b"}, Err: errors.New("boom")},
			},
			failed:    2,
			allFailed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &AggregationResult{Outcomes: tt.outcomes}
			if got := len(r.Failed()); got != tt.failed {
				t.Errorf("Expected %d failed, got %d", tt.failed, got)
			}
			if got := r.AllFailed(); got != tt.allFailed {
				t.Errorf("Expected AllFailed=%v, got %v", tt.allFailed, got)
			}
		})
	}
}

func TestFeedItem_ShareText(t *testing.T) {
	item := FeedItem{Link: "https://example.com/a"}
	if got := item.ShareText(); got != "Check this out: https://example.com/a" {
		t.Errorf("Unexpected share text: %s", got)
	}
	if item.HasCategory("World") {
		t.Errorf("Item without categories must not match")
	}
}
