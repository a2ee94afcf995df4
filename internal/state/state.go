package state

import (
	"sync"
	"time"

	"newsly/internal/processors"
	"newsly/internal/types"
)

// Snapshot is the result of one refresh. It is never modified after
// NewSnapshot returns; a refresh replaces it as a whole.
type Snapshot struct {
	RunID       string                `json:"run_id"`
	Items       []types.FeedItem      `json:"items"`
	Categories  []string              `json:"categories"`
	Outcomes    []types.SourceOutcome `json:"outcomes"`
	RefreshedAt time.Time             `json:"refreshed_at"`
}

func NewSnapshot(result *types.AggregationResult, refreshedAt time.Time) *Snapshot {
	return &Snapshot{
		RunID:       result.RunID,
		Items:       result.Items,
		Categories:  processors.Categories(result.Items),
		Outcomes:    result.Outcomes,
		RefreshedAt: refreshedAt,
	}
}

// Filter applies the category selector; an empty category returns every item.
func (s *Snapshot) Filter(category string) []types.FeedItem {
	return processors.FilterByCategory(s.Items, category)
}

func (s *Snapshot) FailedSources() int {
	failed := 0
	for _, o := range s.Outcomes {
		if o.Failed() {
			failed++
		}
	}
	return failed
}

// Store holds the current snapshot. Readers always see either the previous
// or the next snapshot in full.
type Store struct {
	mu       sync.RWMutex
	current  *Snapshot
	watchers []func(*Snapshot)
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the latest snapshot, or nil before the first refresh.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Replace(snapshot *Snapshot) {
	s.mu.Lock()
	s.current = snapshot
	watchers := append([]func(*Snapshot){}, s.watchers...)
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(snapshot)
	}
}

// OnReplace registers fn to be called after every Replace.
func (s *Store) OnReplace(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}
