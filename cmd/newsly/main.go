package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsly/internal/config"
	"newsly/internal/core"
	"newsly/internal/logger"
	"newsly/internal/processors"
	"newsly/internal/server/feed"
	"newsly/internal/sources/rss"
	"newsly/internal/state"
)

var (
	configPath = flag.String("config", "newsly.toml", "Path to configuration file (TOML, or YAML by extension)")
	category   = flag.String("category", "", "Only show items carrying this category (exact match)")
	keyword    = flag.String("keyword", "", "Only show items whose title contains this keyword")
	exclude    = flag.Bool("exclude", false, "Hide items matching -keyword instead of keeping them")
	dedupe     = flag.Bool("dedupe", false, "Drop items whose link already appeared in an earlier source")
	format     = flag.String("format", "text", "Output format: text or json")
	listCats   = flag.Bool("categories", false, "List the distinct categories instead of items")
	serve      = flag.Bool("serve", false, "Refresh periodically and serve the merged feed over HTTP")
	initConfig = flag.Bool("init", false, "Write a default configuration to -config and exit")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived signal: %v, shutting down...\n", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(ctx context.Context) error {
	if *initConfig {
		if err := config.Save(*configPath, config.Default()); err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", *configPath)
		return nil
	}

	if *format != "text" && *format != "json" {
		return fmt.Errorf("unsupported format %q", *format)
	}

	cfg, err := config.Load(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "No configuration at %s, using the default sources\n", *configPath)
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logs, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logs.Close()
	slog.SetDefault(logs.Logger)

	fetcher := rss.NewFetcher(cfg.FetcherConfig())
	rss.UseOPMLFetcher(fetcher)

	sources, err := cfg.BuildSources(ctx, logs.Logger)
	if err != nil {
		return err
	}

	store := state.NewStore()
	refresher := core.NewRefresher(core.RefresherConfig{
		Name:       cfg.App.Name,
		Aggregator: rss.NewAggregator(fetcher, logs.Logger),
		Sources:    sources,
		Store:      store,
		Interval:   cfg.Interval(),
		RunTimeout: cfg.RunTimeout(),
		RunOnce:    !*serve,
		Logger:     logs.Logger,
	})

	if *serve {
		return runServer(ctx, cfg, refresher, logs.Logger)
	}

	snapshot, err := refreshOnce(ctx, refresher)
	if err != nil {
		return err
	}
	if *listCats {
		return printCategories(os.Stdout, snapshot.Categories, *format)
	}

	mode := processors.ModeInclude
	if *exclude {
		mode = processors.ModeExclude
	}
	var keywords []string
	if *keyword != "" {
		keywords = []string{*keyword}
	}
	filter := processors.ChainFilters("cli",
		processors.CategoryFilter(*category),
		processors.KeywordFilter("keyword", keywords, mode),
	)

	items := filter.Apply(snapshot.Items)
	if *dedupe {
		items = processors.Dedupe(items)
	}

	return printItems(os.Stdout, items, *format)
}

// refreshOnce runs a run-once refresher to completion and returns the
// snapshot it published.
func refreshOnce(ctx context.Context, refresher *core.Refresher) (*state.Snapshot, error) {
	if err := refresher.Start(ctx); err != nil {
		return nil, err
	}

	snapshot := refresher.Store().Current()
	if snapshot == nil {
		return nil, fmt.Errorf("refresh did not publish a snapshot")
	}
	return snapshot, nil
}

func runServer(ctx context.Context, cfg *config.Config, refresher *core.Refresher, logger *slog.Logger) error {
	server := feed.New(cfg.App.Name, feed.Config{
		Addr:     cfg.Server.Addr,
		MaxItems: cfg.Server.MaxItems,
		CacheTTL: cfg.CacheTTL(),
	}, refresher.Store(), logger)

	if err := server.Start(ctx); err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		if err := refresher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
		close(errChan)
	}()

	var runErr error
	select {
	case runErr = <-errChan:
	case <-ctx.Done():
		refresher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Feed server shutdown failed", "error", err)
	}

	logger.Info("Stopped", "name", cfg.App.Name)
	return runErr
}
