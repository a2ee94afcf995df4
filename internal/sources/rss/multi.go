package rss

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"newsly/internal/types"
)

// Aggregator runs fetch, parse and normalize for every source concurrently
// and merges the results in source order.
type Aggregator struct {
	fetcher DocumentFetcher
	parser  *Parser
	logger  *slog.Logger
}

func NewAggregator(fetcher DocumentFetcher, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Aggregator{
		fetcher: fetcher,
		parser:  NewParser(),
		logger:  logger,
	}
}

type sourceResult struct {
	items   []types.FeedItem
	outcome types.SourceOutcome
}

// Aggregate never fails. A source that cannot be fetched or parsed
// contributes no items and is recorded in the result outcomes. When ctx is
// cancelled, in-flight fetches are aborted and sources that already finished
// keep their items.
func (a *Aggregator) Aggregate(ctx context.Context, sources []types.FeedSource) *types.AggregationResult {
	start := time.Now()
	runID := uuid.NewString()

	a.logger.Info("Aggregator fetching feeds", "run_id", runID, "count", len(sources))

	results := make([]sourceResult, len(sources))

	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(slot int, s types.FeedSource) {
			defer wg.Done()
			results[slot] = a.collect(ctx, s)
		}(i, source)
	}
	wg.Wait()

	result := &types.AggregationResult{
		RunID:    runID,
		Items:    make([]types.FeedItem, 0),
		Outcomes: make([]types.SourceOutcome, 0, len(results)),
	}
	for _, r := range results {
		result.Items = append(result.Items, r.items...)
		result.Outcomes = append(result.Outcomes, r.outcome)
	}

	a.logger.Info("Aggregator finished",
		"run_id", runID,
		"sources", len(sources),
		"failed", len(result.Failed()),
		"items", len(result.Items),
		"duration", time.Since(start))

	return result
}

func (a *Aggregator) collect(ctx context.Context, source types.FeedSource) sourceResult {
	start := time.Now()

	items, format, err := a.process(ctx, source)
	outcome := types.SourceOutcome{
		Source:   source,
		Format:   format,
		Items:    len(items),
		Duration: time.Since(start),
		Err:      err,
	}

	if err != nil {
		a.logger.Error("Aggregator feed fetch error", "feed", source.String(), "url", source.URL, "error", err)
		return sourceResult{outcome: outcome}
	}

	a.logger.Debug("Aggregator feed retrieved", "feed", source.String(), "format", format, "items", len(items))
	return sourceResult{items: items, outcome: outcome}
}

func (a *Aggregator) process(ctx context.Context, source types.FeedSource) ([]types.FeedItem, string, error) {
	doc, err := a.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		if !types.IsFetchError(err) {
			err = types.NewFetchError(source.URL, err)
		}
		return nil, "", err
	}

	raw, err := a.parser.Parse(bytes.NewReader(doc.Body))
	if err != nil {
		return nil, "", types.NewParseError(source.URL, err)
	}

	base, err := url.Parse(doc.FinalURL)
	if err != nil || doc.FinalURL == "" {
		base, _ = url.Parse(source.URL)
	}

	items := make([]types.FeedItem, 0, len(raw))
	for _, r := range raw {
		items = append(items, Normalize(r, base))
	}

	return items, DetectFormat(doc.Body), nil
}
