package rss

import (
	"context"

	"newsly/internal/types"
)

// SourceLoader expands one configured value (a feed URL, an OPML path or an
// OPML URL) into an ordered list of feed sources.
type SourceLoader interface {
	Load(ctx context.Context, value string) ([]types.FeedSource, error)
}

type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (*types.Document, error)
}
