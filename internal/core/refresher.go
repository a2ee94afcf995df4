package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"newsly/internal/state"
	"newsly/internal/types"
)

type Aggregator interface {
	Aggregate(ctx context.Context, sources []types.FeedSource) *types.AggregationResult
}

type RefresherConfig struct {
	Name       string
	Aggregator Aggregator
	Sources    []types.FeedSource
	Store      *state.Store
	Interval   time.Duration
	RunTimeout time.Duration
	RunOnce    bool
	Logger     *slog.Logger
}

// Refresher runs aggregation passes and publishes each result as a new
// snapshot, either once or on a fixed interval.
type Refresher struct {
	name       string
	aggregator Aggregator
	sources    []types.FeedSource
	store      *state.Store
	interval   time.Duration
	runTimeout time.Duration
	runOnce    bool
	logger     *slog.Logger
	mu         sync.RWMutex
	running    bool
	stopCh     chan struct{}
	stopOnce   sync.Once
}

func NewRefresher(config RefresherConfig) *Refresher {
	if config.Interval == 0 {
		config.Interval = 15 * time.Minute
	}
	if config.RunTimeout == 0 {
		config.RunTimeout = 2 * time.Minute
	}
	if config.Store == nil {
		config.Store = state.NewStore()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Refresher{
		name:       config.Name,
		aggregator: config.Aggregator,
		sources:    config.Sources,
		store:      config.Store,
		interval:   config.Interval,
		runTimeout: config.RunTimeout,
		runOnce:    config.RunOnce,
		logger:     config.Logger,
		stopCh:     make(chan struct{}),
	}
}

func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("refresher already running")
	}
	r.running = true
	r.mu.Unlock()

	defer r.markStopped()

	r.logger.Info("Refresher starting", "name", r.name, "sources", len(r.sources), "interval", r.interval, "run_once", r.runOnce)

	r.Refresh(ctx)
	if r.runOnce {
		return nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stopCh:
			return nil
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh performs one aggregation pass bounded by the run timeout and
// publishes the result. It returns the new snapshot.
func (r *Refresher) Refresh(ctx context.Context) *state.Snapshot {
	runCtx, cancel := context.WithTimeout(ctx, r.runTimeout)
	defer cancel()

	result := r.aggregator.Aggregate(runCtx, r.sources)
	if result.AllFailed() {
		r.logger.Warn("Refresher run produced no items, every source failed", "run_id", result.RunID, "sources", len(r.sources))
	}

	snapshot := state.NewSnapshot(result, time.Now().UTC())
	r.store.Replace(snapshot)

	r.logger.Debug("Refresher published snapshot", "run_id", snapshot.RunID, "items", len(snapshot.Items), "categories", len(snapshot.Categories))
	return snapshot
}

func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
}

func (r *Refresher) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

func (r *Refresher) Name() string {
	return r.name
}

func (r *Refresher) Store() *state.Store {
	return r.store
}

func (r *Refresher) markStopped() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}
