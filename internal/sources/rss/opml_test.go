package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

const testOPML = `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <head><title>Subscriptions</title></head>
  <body>
    <outline text="The Verge" title="The Verge" type="rss" xmlUrl="https://www.theverge.com/rss/index.xml"/>
    <outline text="World">
      <outline text="BBC News" type="rss" xmlUrl=" https://feeds.bbci.co.uk/news/rss.xml "/>
      <outline text="Folder only"/>
    </outline>
    <outline text="Hacker News" xmlUrl="https://news.ycombinator.com/rss"/>
  </body>
</opml>`

func TestParseOPML(t *testing.T) {
	sources, err := ParseOPML([]byte(testOPML))
	if err != nil {
		t.Fatalf("ParseOPML failed: %v", err)
	}

	var urls, names []string
	for _, s := range sources {
		urls = append(urls, s.URL)
		names = append(names, s.Name)
	}

	wantURLs := []string{
		"https://www.theverge.com/rss/index.xml",
		"https://feeds.bbci.co.uk/news/rss.xml",
		"https://news.ycombinator.com/rss",
	}
	if !slices.Equal(urls, wantURLs) {
		t.Errorf("Expected %v, got %v", wantURLs, urls)
	}

	wantNames := []string{"The Verge", "BBC News", "Hacker News"}
	if !slices.Equal(names, wantNames) {
		t.Errorf("Expected %v, got %v", wantNames, names)
	}
}

func TestParseOPMLInvalid(t *testing.T) {
	if _, err := ParseOPML([]byte("<opml><body><outline")); err == nil {
		t.Error("Expected error for truncated OPML")
	}
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.opml")
	if err := os.WriteFile(path, []byte(testOPML), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	srv := setupTestServer(testOPML)
	defer srv.Close()

	tests := []struct {
		name       string
		loaderType string
		value      string
		wantCount  int
		wantErr    bool
	}{
		{name: "single feed", loaderType: LoaderRSS, value: "https://www.theverge.com/rss/index.xml", wantCount: 1},
		{name: "invalid feed url", loaderType: LoaderRSS, value: "not a url", wantErr: true},
		{name: "opml file", loaderType: LoaderOPMLFile, value: path, wantCount: 3},
		{name: "missing opml file", loaderType: LoaderOPMLFile, value: filepath.Join(dir, "missing.opml"), wantErr: true},
		{name: "opml url", loaderType: LoaderOPMLURL, value: srv.URL, wantCount: 3},
		{name: "unknown type", loaderType: "carrier_pigeon", value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources, err := LoadSources(context.Background(), tt.loaderType, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadSources() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(sources) != tt.wantCount {
				t.Errorf("Expected %d sources, got %d", tt.wantCount, len(sources))
			}
		})
	}
}

func TestLoaderTypes(t *testing.T) {
	want := []string{LoaderOPMLFile, LoaderOPMLURL, LoaderRSS}
	if got := LoaderTypes(); !slices.Equal(got, want) {
		t.Errorf("LoaderTypes() = %v, want %v", got, want)
	}
}

func TestUseOPMLFetcher(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, testOPML)
	}))
	defer srv.Close()

	UseOPMLFetcher(NewFetcher(FetcherConfig{UserAgent: "opml-test"}))
	defer UseOPMLFetcher(nil)

	sources, err := LoadSources(context.Background(), LoaderOPMLURL, srv.URL)
	if err != nil {
		t.Fatalf("LoadSources failed: %v", err)
	}
	if len(sources) != 3 {
		t.Errorf("Expected 3 sources, got %d", len(sources))
	}
	if gotUA != "opml-test" {
		t.Errorf("Expected configured fetcher to be used, got %q", gotUA)
	}
}
