package rss

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"golang.org/x/net/html/charset"

	"newsly/internal/types"
)

// DefaultUserAgent is a browser-like identifier; several publishers reject
// requests carrying Go's default client identity.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:146.0) Gecko/20100101 Firefox/146.0"

var xmlEncodingPattern = regexp.MustCompile(`^\x{FEFF}?\s*<\?xml[^>]*?\sencoding\s*=\s*["']([A-Za-z0-9._:\-]+)["']`)

const (
	defaultFetchTimeout = 20 * time.Second
	defaultMaxRedirects = 10
	defaultMaxBodyBytes = 10 << 20
)

type FetcherConfig struct {
	Timeout      time.Duration
	UserAgent    string
	MaxRedirects int
	MaxBodyBytes int64
}

type Fetcher struct {
	client *http.Client
	config FetcherConfig
}

func NewFetcher(config FetcherConfig) *Fetcher {
	if config.Timeout <= 0 {
		config.Timeout = defaultFetchTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.MaxRedirects <= 0 {
		config.MaxRedirects = defaultMaxRedirects
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaultMaxBodyBytes
	}

	f := &Fetcher{config: config}
	f.client = &http.Client{
		Timeout:       config.Timeout,
		CheckRedirect: f.checkRedirect,
	}
	return f
}

func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= f.config.MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", f.config.MaxRedirects)
	}
	f.setHeaders(req)
	return nil
}

func (f *Fetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.9, */*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

// ValidateURL accepts only absolute URLs with a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("URL %q is missing scheme or host", raw)
	}
	return nil
}

// Fetch retrieves the document at rawURL, following redirects. The returned
// body is transcoded to UTF-8. Every failure is a *types.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*types.Document, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, types.NewFetchError(rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, types.NewFetchError(rawURL, fmt.Errorf("failed to create request: %w", err))
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, types.NewFetchError(rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, types.NewStatusError(rawURL, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodyBytes+1))
	if err != nil {
		return nil, types.NewFetchError(rawURL, fmt.Errorf("failed to read response: %w", err))
	}
	if int64(len(raw)) > f.config.MaxBodyBytes {
		return nil, types.NewFetchError(rawURL, fmt.Errorf("response exceeds %d bytes", f.config.MaxBodyBytes))
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := decodeBody(raw, contentType)
	if err != nil {
		return nil, types.NewFetchError(rawURL, err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &types.Document{
		URL:         rawURL,
		FinalURL:    finalURL,
		ContentType: contentType,
		Body:        body,
	}, nil
}

// decodeBody transcodes raw to UTF-8. A charset in the Content-Type header
// wins, then the encoding named in the XML declaration, then sniffing.
func decodeBody(raw []byte, contentType string) ([]byte, error) {
	var reader io.Reader
	if _, params, err := mime.ParseMediaType(contentType); err != nil || params["charset"] == "" {
		if label := xmlEncoding(raw); label != "" {
			if r, err := charset.NewReaderLabel(label, bytes.NewReader(raw)); err == nil {
				reader = r
			}
		}
	}

	if reader == nil {
		r, err := charset.NewReader(bytes.NewReader(raw), contentType)
		if err != nil {
			return nil, fmt.Errorf("failed to detect charset: %w", err)
		}
		reader = r
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return body, nil
}

// xmlEncoding returns the encoding label of the XML declaration, if any.
func xmlEncoding(raw []byte) string {
	head := raw[:min(len(raw), 1024)]
	if m := xmlEncodingPattern.FindSubmatch(head); m != nil {
		return string(m[1])
	}
	return ""
}
