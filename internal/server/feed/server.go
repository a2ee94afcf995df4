package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/feeds"

	"newsly/internal/cache"
	"newsly/internal/processors"
	"newsly/internal/state"
	"newsly/internal/types"
)

type Config struct {
	Addr     string
	Title    string
	Link     string
	MaxItems int
	CacheTTL time.Duration
}

// Server exposes the current snapshot as RSS, Atom and JSON Feed documents
// plus a few JSON endpoints.
type Server struct {
	name   string
	config Config
	store  *state.Store
	cache  *cache.Cache[CacheKey, string]
	logger *slog.Logger
	server *http.Server
}

func New(name string, config Config, store *state.Store, logger *slog.Logger) *Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.Title == "" {
		config.Title = name
	}
	if config.Link == "" {
		config.Link = "http://localhost/"
	}
	if config.MaxItems == 0 {
		config.MaxItems = 100
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		name:   name,
		config: config,
		store:  store,
		cache:  NewCache(config.CacheTTL, logger),
		logger: logger,
	}

	// Rendered documents of older snapshots are never served again.
	store.OnReplace(func(*state.Snapshot) {
		s.cache.Clear()
	})

	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /feed.rss", s.handleFeed(TypeRSS))
	mux.HandleFunc("GET /feed.atom", s.handleFeed(TypeAtom))
	mux.HandleFunc("GET /feed.json", s.handleFeed(TypeJSON))
	mux.HandleFunc("GET /items", s.handleItems)
	mux.HandleFunc("GET /categories", s.handleCategories)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Start binds the listen address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Feed server error", "name", s.name, "error", err)
		}
	}()

	s.logger.Info("Feed server listening", "name", s.name, "addr", listener.Addr().String())
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("feed server shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleFeed(feedType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := s.store.Current()
		if snapshot == nil {
			http.Error(w, "feed not ready", http.StatusServiceUnavailable)
			return
		}

		category := r.URL.Query().Get("category")
		key := NewCacheKey(snapshot.RunID, feedType, category)

		body, err := s.cache.GetOrCompute(key, func() (string, error) {
			return s.render(feedType, snapshot, category)
		})
		if err != nil {
			s.logger.Error("Feed server failed to render feed", "name", s.name, "type", feedType, "error", err)
			http.Error(w, "failed to render feed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType(feedType))
		w.Header().Set("Cache-Control", "public, max-age=300")
		fmt.Fprint(w, body)
	}
}

func (s *Server) render(feedType string, snapshot *state.Snapshot, category string) (string, error) {
	feed := s.buildFeed(snapshot, category)

	switch feedType {
	case TypeRSS:
		return feed.ToRss()
	case TypeAtom:
		return feed.ToAtom()
	case TypeJSON:
		return feed.ToJSON()
	default:
		return "", fmt.Errorf("unknown feed type %q", feedType)
	}
}

func (s *Server) buildFeed(snapshot *state.Snapshot, category string) *feeds.Feed {
	// Entry ids derive from links, so a story carried by two sources is listed once.
	entries := processors.Dedupe(snapshot.Filter(category))
	if len(entries) > s.config.MaxItems {
		entries = entries[:s.config.MaxItems]
	}

	items := make([]*feeds.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, &feeds.Item{
			Id:          processors.ItemKey(entry),
			Title:       entry.Title,
			Link:        &feeds.Link{Href: entry.Link},
			Description: entry.Description,
			Content:     entry.Content,
			Created:     snapshot.RefreshedAt,
		})
	}

	title := s.config.Title
	if category != "" {
		title = fmt.Sprintf("%s (%s)", title, category)
	}

	return &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: s.config.Link},
		Description: fmt.Sprintf("News aggregated by %s", s.name),
		Author:      &feeds.Author{Name: s.name},
		Created:     snapshot.RefreshedAt,
		Items:       items,
	}
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	snapshot := s.store.Current()
	if snapshot == nil {
		writeJSON(w, http.StatusOK, []types.FeedItem{})
		return
	}
	writeJSON(w, http.StatusOK, snapshot.Filter(r.URL.Query().Get("category")))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	snapshot := s.store.Current()
	if snapshot == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	writeJSON(w, http.StatusOK, snapshot.Categories)
}

type healthResponse struct {
	Status        string    `json:"status"`
	Name          string    `json:"name"`
	RunID         string    `json:"run_id,omitempty"`
	Items         int       `json:"items"`
	Sources       int       `json:"sources"`
	FailedSources int       `json:"failed_sources"`
	RefreshedAt   time.Time `json:"refreshed_at,omitzero"`
	Time          time.Time `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "starting",
		Name:   s.name,
		Time:   time.Now().UTC(),
	}

	if snapshot := s.store.Current(); snapshot != nil {
		resp.RunID = snapshot.RunID
		resp.Items = len(snapshot.Items)
		resp.Sources = len(snapshot.Outcomes)
		resp.FailedSources = snapshot.FailedSources()
		resp.RefreshedAt = snapshot.RefreshedAt

		switch {
		case resp.Sources > 0 && resp.FailedSources == resp.Sources:
			resp.Status = "failing"
		case resp.FailedSources > 0:
			resp.Status = "degraded"
		default:
			resp.Status = "ok"
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func contentType(feedType string) string {
	switch feedType {
	case TypeAtom:
		return "application/atom+xml; charset=utf-8"
	case TypeJSON:
		return "application/feed+json; charset=utf-8"
	default:
		return "application/rss+xml; charset=utf-8"
	}
}
