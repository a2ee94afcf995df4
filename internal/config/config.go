package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"newsly/internal/sources/rss"
)

const (
	DefaultName         = "newsly"
	DefaultInterval     = "15m"
	DefaultRunTimeout   = "2m"
	DefaultFetchTimeout = "20s"
	DefaultMaxRedirects = 10
	DefaultMaxBodyBytes = 10 << 20
	DefaultAddr         = ":8080"
	DefaultMaxItems     = 100
	DefaultCacheTTL     = "5m"

	minInterval = time.Minute
)

var logLevels = []string{"debug", "info", "warn", "error"}

type Config struct {
	App     AppConfig      `toml:"app" yaml:"app"`
	Fetch   FetchConfig    `toml:"fetch" yaml:"fetch"`
	Log     LogConfig      `toml:"log" yaml:"log"`
	Server  ServerConfig   `toml:"server" yaml:"server"`
	Sources []SourceConfig `toml:"sources" yaml:"sources"`
}

type AppConfig struct {
	Name       string `toml:"name" yaml:"name"`
	Interval   string `toml:"interval" yaml:"interval"`
	RunTimeout string `toml:"run_timeout" yaml:"run_timeout"`
}

type FetchConfig struct {
	Timeout      string `toml:"timeout" yaml:"timeout"`
	UserAgent    string `toml:"user_agent" yaml:"user_agent"`
	MaxRedirects int    `toml:"max_redirects" yaml:"max_redirects"`
	MaxBodyBytes int64  `toml:"max_body_bytes" yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level      string `toml:"level" yaml:"level"`
	File       string `toml:"file" yaml:"file"`
	MaxSize    int    `toml:"max_size" yaml:"max_size"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
	MaxAge     int    `toml:"max_age" yaml:"max_age"`
}

type ServerConfig struct {
	Addr     string `toml:"addr" yaml:"addr"`
	MaxItems int    `toml:"max_items" yaml:"max_items"`
	CacheTTL string `toml:"cache_ttl" yaml:"cache_ttl"`
}

type SourceConfig struct {
	Type    string `toml:"type" yaml:"type"`
	Value   string `toml:"value" yaml:"value"`
	Enabled *bool  `toml:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// IsEnabled treats a missing enabled key as true.
func (s SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	cfg := &Config{
		Sources: []SourceConfig{
			{Type: rss.LoaderRSS, Value: "https://www.theverge.com/rss/index.xml"},
			{Type: rss.LoaderRSS, Value: "https://feeds.bbci.co.uk/news/rss.xml"},
		},
	}
	_ = validateConfig(cfg)
	return cfg
}

// Load reads a TOML config, or YAML when the file ends in .yaml or .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = toml.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Save writes config to path in the format its extension selects.
func Save(path string, config *Config) error {
	var buf bytes.Buffer
	if isYAML(path) {
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(config); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
	} else if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func validateConfig(config *Config) error {
	if config.App.Name == "" {
		config.App.Name = DefaultName
	}

	if config.App.Interval == "" {
		config.App.Interval = DefaultInterval
	}

	interval, err := time.ParseDuration(config.App.Interval)
	if err != nil {
		return fmt.Errorf("invalid interval: %w", err)
	}
	if interval < minInterval {
		return fmt.Errorf("interval %s is below the minimum of %s", interval, minInterval)
	}

	if config.App.RunTimeout == "" {
		config.App.RunTimeout = DefaultRunTimeout
	}

	if d, err := time.ParseDuration(config.App.RunTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid run_timeout %q", config.App.RunTimeout)
	}

	if config.Fetch.Timeout == "" {
		config.Fetch.Timeout = DefaultFetchTimeout
	}

	if d, err := time.ParseDuration(config.Fetch.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid fetch timeout %q", config.Fetch.Timeout)
	}

	if config.Fetch.UserAgent == "" {
		config.Fetch.UserAgent = rss.DefaultUserAgent
	}

	if config.Fetch.MaxRedirects < 0 || config.Fetch.MaxBodyBytes < 0 {
		return fmt.Errorf("max_redirects and max_body_bytes must not be negative")
	}

	if config.Fetch.MaxRedirects == 0 {
		config.Fetch.MaxRedirects = DefaultMaxRedirects
	}

	if config.Fetch.MaxBodyBytes == 0 {
		config.Fetch.MaxBodyBytes = DefaultMaxBodyBytes
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	config.Log.Level = strings.ToLower(config.Log.Level)

	if !slices.Contains(logLevels, config.Log.Level) {
		return fmt.Errorf("invalid log level %q (expected one of %v)", config.Log.Level, logLevels)
	}

	if config.Log.MaxSize <= 0 {
		config.Log.MaxSize = 64
	}

	if config.Log.MaxBackups <= 0 {
		config.Log.MaxBackups = 3
	}

	if config.Log.MaxAge <= 0 {
		config.Log.MaxAge = 7
	}

	if config.Server.Addr == "" {
		config.Server.Addr = DefaultAddr
	}

	if config.Server.MaxItems <= 0 {
		config.Server.MaxItems = DefaultMaxItems
	}

	if config.Server.CacheTTL == "" {
		config.Server.CacheTTL = DefaultCacheTTL
	}

	if _, err := time.ParseDuration(config.Server.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache_ttl: %w", err)
	}

	known := rss.LoaderTypes()
	enabledSources := 0
	for i, src := range config.Sources {
		if !slices.Contains(known, src.Type) {
			return fmt.Errorf("source %d: unknown type %q (expected one of %v)", i+1, src.Type, known)
		}
		if strings.TrimSpace(src.Value) == "" {
			return fmt.Errorf("source %d: value is required", i+1)
		}
		if src.IsEnabled() {
			enabledSources++
		}
	}
	if enabledSources == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	return nil
}

func (c *Config) Interval() time.Duration {
	d, _ := time.ParseDuration(c.App.Interval)
	return d
}

func (c *Config) RunTimeout() time.Duration {
	d, _ := time.ParseDuration(c.App.RunTimeout)
	return d
}

func (c *Config) CacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Server.CacheTTL)
	return d
}

// FetcherConfig maps the [fetch] section onto the feed fetcher settings.
func (c *Config) FetcherConfig() rss.FetcherConfig {
	timeout, _ := time.ParseDuration(c.Fetch.Timeout)
	return rss.FetcherConfig{
		Timeout:      timeout,
		UserAgent:    c.Fetch.UserAgent,
		MaxRedirects: c.Fetch.MaxRedirects,
		MaxBodyBytes: c.Fetch.MaxBodyBytes,
	}
}
