package config

import (
	"context"
	"fmt"
	"log/slog"

	"newsly/internal/sources/rss"
	"newsly/internal/types"
)

// BuildSources expands the enabled source entries into feed sources, in
// config order. An entry that cannot be expanded is logged and skipped; a
// URL listed twice keeps its first position.
func (c *Config) BuildSources(ctx context.Context, logger *slog.Logger) ([]types.FeedSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var sources []types.FeedSource
	seen := make(map[string]struct{})

	for _, sourceCfg := range c.Sources {
		if !sourceCfg.IsEnabled() {
			continue
		}

		expanded, err := rss.LoadSources(ctx, sourceCfg.Type, sourceCfg.Value)
		if err != nil {
			logger.Error("Loader failed to expand source", "type", sourceCfg.Type, "value", sourceCfg.Value, "error", err)
			continue
		}

		logger.Debug("Loader expanded source", "type", sourceCfg.Type, "value", sourceCfg.Value, "feeds", len(expanded))

		for _, source := range expanded {
			if _, ok := seen[source.URL]; ok {
				continue
			}
			seen[source.URL] = struct{}{}
			sources = append(sources, source)
		}
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no feed sources could be loaded")
	}

	logger.Info("Loader initialized sources", "count", len(sources))
	return sources, nil
}
