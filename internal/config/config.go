package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/matheuskafuri/milnews/internal/relevance"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const (
	ModeConverter = "rss2json"
	ModeDirect    = "direct"
)

// API configures a keyed search provider.
type API struct {
	Enabled bool    `yaml:"enabled"`
	BaseURL string  `yaml:"base_url"`
	APIKey  string  `yaml:"api_key"`
	Rate    float64 `yaml:"rate"`
}

// Feeds configures the curated feed provider.
type Feeds struct {
	Enabled      bool     `yaml:"enabled"`
	Mode         string   `yaml:"mode"`
	ConverterURL string   `yaml:"converter_url"`
	APIKey       string   `yaml:"api_key"`
	Concurrency  int      `yaml:"concurrency"`
	Rate         float64  `yaml:"rate"`
	URLs         []string `yaml:"urls"`
}

type Relevance struct {
	ExtraExclude []string `yaml:"extra_exclude"`
	ExtraInclude []string `yaml:"extra_include"`
}

type Config struct {
	Query      string    `yaml:"query"`
	Count      int       `yaml:"count"`
	TTL        string    `yaml:"cache_ttl"`
	Timeout    string    `yaml:"http_timeout"`
	Level      string    `yaml:"log_level"`
	NewsAPI    API       `yaml:"newsapi"`
	TheNewsAPI API       `yaml:"thenewsapi"`
	Feeds      Feeds     `yaml:"feeds"`
	Relevance  Relevance `yaml:"relevance"`
}

// NewsAPIActive reports whether NewsAPI is enabled and has a key.
func (c *Config) NewsAPIActive() bool {
	return c.NewsAPI.Enabled && c.NewsAPI.APIKey != ""
}

// TheNewsAPIActive reports whether TheNewsAPI is enabled and has a key.
func (c *Config) TheNewsAPIActive() bool {
	return c.TheNewsAPI.Enabled && c.TheNewsAPI.APIKey != ""
}

func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

func (c *Config) HTTPTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// LogLevel returns the configured level, Info when unset or unknown.
func (c *Config) LogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Policy returns the default relevance policy extended with the configured
// extra terms.
func (c *Config) Policy() relevance.Policy {
	return relevance.Default().With(c.Relevance.ExtraExclude, c.Relevance.ExtraInclude)
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "milnews", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "milnews", "milnews.db")
}

// LoadEnv loads KEY=value files into the environment without overriding
// variables that are already set. Missing files are skipped. With no
// arguments it reads ./.env.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

func parse(data []byte, into *Config) error {
	return yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), into)
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := parse(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path on top of the embedded defaults. Keys absent
// from the file keep their default value. A missing file is created from the
// defaults on first run.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults are still usable.
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := parse(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if cfg.Count < 0 {
		return fmt.Errorf("count must not be negative, got %d", cfg.Count)
	}
	if cfg.Level != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(cfg.Level)); err != nil {
			return fmt.Errorf("unknown log_level %q (valid: debug, info, warn, error)", cfg.Level)
		}
	}
	for name, api := range map[string]API{"newsapi": cfg.NewsAPI, "thenewsapi": cfg.TheNewsAPI} {
		if api.BaseURL == "" {
			continue
		}
		if err := checkURL(api.BaseURL); err != nil {
			return fmt.Errorf("%s: base_url: %w", name, err)
		}
	}

	switch strings.ToLower(cfg.Feeds.Mode) {
	case "", ModeConverter, ModeDirect:
	default:
		return fmt.Errorf("feeds: unknown mode %q (valid: %s, %s)", cfg.Feeds.Mode, ModeConverter, ModeDirect)
	}
	if cfg.Feeds.ConverterURL != "" {
		if err := checkURL(cfg.Feeds.ConverterURL); err != nil {
			return fmt.Errorf("feeds: converter_url: %w", err)
		}
	}
	for i, u := range cfg.Feeds.URLs {
		if err := checkURL(u); err != nil {
			return fmt.Errorf("feed %d: %w", i, err)
		}
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}
