package rss

import (
	"context"
	"fmt"

	"newsly/internal/types"
)

const (
	LoaderRSS      = "rss"
	LoaderOPMLFile = "opml_file"
	LoaderOPMLURL  = "opml_url"
)

type RSSLoader struct{}

func (r *RSSLoader) Load(ctx context.Context, value string) ([]types.FeedSource, error) {
	if err := ValidateURL(value); err != nil {
		return nil, err
	}
	return []types.FeedSource{{URL: value}}, nil
}

type OPMLFileLoader struct{}

func (o *OPMLFileLoader) Load(ctx context.Context, path string) ([]types.FeedSource, error) {
	data, err := LoadOPMLFile(path)
	if err != nil {
		return nil, err
	}

	return ParseOPML(data)
}

type OPMLURLLoader struct {
	fetcher DocumentFetcher
}

func (o *OPMLURLLoader) Load(ctx context.Context, url string) ([]types.FeedSource, error) {
	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = NewFetcher(FetcherConfig{})
	}

	doc, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OPML: %w", err)
	}

	return ParseOPML(doc.Body)
}

// UseOPMLFetcher replaces the fetcher of the registered opml_url loader so
// that OPML lists are retrieved with the configured client identity.
func UseOPMLFetcher(fetcher DocumentFetcher) {
	RegisterLoader(LoaderOPMLURL, &OPMLURLLoader{fetcher: fetcher})
}

// LoadSources expands a loader value into feed sources.
func LoadSources(ctx context.Context, loaderType, value string) ([]types.FeedSource, error) {
	loader, err := GetLoader(loaderType)
	if err != nil {
		return nil, fmt.Errorf("failed to get loader: %w", err)
	}

	sources, err := loader.Load(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("failed to load feeds from %s: %w", value, err)
	}

	return sources, nil
}

func init() {
	RegisterLoader(LoaderRSS, &RSSLoader{})
	RegisterLoader(LoaderOPMLFile, &OPMLFileLoader{})
	RegisterLoader(LoaderOPMLURL, &OPMLURLLoader{})
}
