package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"newsly/internal/sources/rss"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "newsly.toml", `
[app]
interval = "30m"

[fetch]
timeout = "5s"

[log]
level = "DEBUG"

[[sources]]
type = "rss"
value = "https://www.theverge.com/rss/index.xml"

[[sources]]
type = "opml_file"
value = "feeds.opml"
enabled = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.App.Name != DefaultName {
		t.Errorf("Expected default name, got %q", cfg.App.Name)
	}
	if cfg.Interval() != 30*time.Minute {
		t.Errorf("Expected 30m interval, got %v", cfg.Interval())
	}
	if cfg.RunTimeout() != 2*time.Minute {
		t.Errorf("Expected default run timeout, got %v", cfg.RunTimeout())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected lowered log level, got %q", cfg.Log.Level)
	}
	if cfg.Server.MaxItems != DefaultMaxItems || cfg.Server.Addr != DefaultAddr {
		t.Errorf("Expected server defaults, got %+v", cfg.Server)
	}
	if len(cfg.Sources) != 2 || cfg.Sources[1].IsEnabled() {
		t.Errorf("Expected second source to be disabled, got %+v", cfg.Sources)
	}

	fc := cfg.FetcherConfig()
	if fc.Timeout != 5*time.Second || fc.UserAgent != rss.DefaultUserAgent || fc.MaxRedirects != DefaultMaxRedirects {
		t.Errorf("Unexpected fetcher config %+v", fc)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "newsly.yaml", `
app:
  name: headlines
server:
  addr: ":9090"
  cache_ttl: 1m
sources:
  - type: rss
    value: https://feeds.bbci.co.uk/news/rss.xml
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.App.Name != "headlines" {
		t.Errorf("Expected name headlines, got %q", cfg.App.Name)
	}
	if cfg.Server.Addr != ":9090" || cfg.CacheTTL() != time.Minute {
		t.Errorf("Unexpected server config %+v", cfg.Server)
	}
	if len(cfg.Sources) != 1 || !cfg.Sources[0].IsEnabled() {
		t.Errorf("Expected one enabled source, got %+v", cfg.Sources)
	}
}

func TestLoadInvalid(t *testing.T) {
	source := "\n[[sources]]\ntype = \"rss\"\nvalue = \"https://example.com/rss\"\n"

	tests := []struct {
		name    string
		content string
		errText string
	}{
		{name: "no sources", content: "[app]\nname = \"x\"\n", errText: "at least one source"},
		{name: "all disabled", content: "[[sources]]\ntype = \"rss\"\nvalue = \"https://example.com\"\nenabled = false\n", errText: "at least one source"},
		{name: "bad interval", content: "[app]\ninterval = \"soon\"\n" + source, errText: "invalid interval"},
		{name: "interval too short", content: "[app]\ninterval = \"10s\"\n" + source, errText: "below the minimum"},
		{name: "bad log level", content: "[log]\nlevel = \"loud\"\n" + source, errText: "invalid log level"},
		{name: "unknown source type", content: "[[sources]]\ntype = \"atom\"\nvalue = \"https://example.com\"\n", errText: "unknown type"},
		{name: "missing value", content: "[[sources]]\ntype = \"rss\"\n", errText: "value is required"},
		{name: "not toml", content: "this is = = not toml", errText: "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "newsly.toml", tt.content))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Expected error containing %q, got %v", tt.errText, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestSaveDefaultRoundTrip(t *testing.T) {
	for _, name := range []string{"newsly.toml", "nested/newsly.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := Save(path, Default()); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(cfg.Sources) != 2 || cfg.Sources[0].Value != "https://www.theverge.com/rss/index.xml" {
				t.Errorf("Unexpected sources %+v", cfg.Sources)
			}
		})
	}
}

func TestBuildSources(t *testing.T) {
	opml := `<opml version="2.0"><body>
<outline text="Verge" xmlUrl="https://www.theverge.com/rss/index.xml"/>
<outline text="Other" xmlUrl="https://example.com/other.xml"/>
</body></opml>`
	opmlPath := writeConfig(t, "feeds.opml", opml)

	disabled := false
	cfg := &Config{Sources: []SourceConfig{
		{Type: rss.LoaderRSS, Value: "https://www.theverge.com/rss/index.xml"},
		{Type: rss.LoaderOPMLFile, Value: opmlPath},
		{Type: rss.LoaderRSS, Value: "https://disabled.example.com/rss", Enabled: &disabled},
		{Type: rss.LoaderOPMLFile, Value: filepath.Join(t.TempDir(), "missing.opml")},
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sources, err := cfg.BuildSources(context.Background(), logger)
	if err != nil {
		t.Fatalf("BuildSources failed: %v", err)
	}

	if len(sources) != 2 {
		t.Fatalf("Expected 2 deduplicated sources, got %+v", sources)
	}
	if sources[0].URL != "https://www.theverge.com/rss/index.xml" || sources[1].URL != "https://example.com/other.xml" {
		t.Errorf("Unexpected order %+v", sources)
	}
}

func TestBuildSourcesNoneLoaded(t *testing.T) {
	cfg := &Config{Sources: []SourceConfig{
		{Type: rss.LoaderOPMLFile, Value: filepath.Join(t.TempDir(), "missing.opml")},
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := cfg.BuildSources(context.Background(), logger); err == nil {
		t.Error("Expected error when nothing could be loaded")
	}
}
