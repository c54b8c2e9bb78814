package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/matheuskafuri/milnews/internal/aggregator"
	"github.com/matheuskafuri/milnews/internal/cache"
	"github.com/matheuskafuri/milnews/internal/config"
	"github.com/matheuskafuri/milnews/internal/feed"
	"github.com/matheuskafuri/milnews/internal/provider"
	"github.com/matheuskafuri/milnews/internal/provider/newsapi"
	"github.com/matheuskafuri/milnews/internal/provider/thenewsapi"
	"github.com/spf13/cobra"
)

var errNoProviders = errors.New("no providers enabled: set NEWS_API_KEY or THENEWSAPI_KEY, or enable feeds in the config")

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	var since time.Time
	if flagSince != "" {
		d, err := parseSince(flagSince)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		since = time.Now().Add(-d)
	}

	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	providers := buildProviders(cfg, store, log)
	if len(providers) == 0 {
		return errNoProviders
	}

	query := flagQuery
	if query == "" {
		query = cfg.Query
	}
	count := flagCount
	if count <= 0 {
		count = cfg.Count
	}

	// Bounds the whole run. Providers still pending at the deadline are
	// cancelled and count as failed.
	ctx, cancel := context.WithTimeout(cmd.Context(), 4*cfg.HTTPTimeout())
	defer cancel()

	agg := aggregator.New(store, providers, aggregator.WithLogger(log))
	res := agg.Aggregate(ctx, query, count)
	if !res.Success {
		return errors.New(res.Error)
	}

	renderResult(cmd.OutOrStdout(), res, since, time.Now())
	return nil
}

// setup loads .env and the config file and builds the logger every
// subcommand shares.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	level := cfg.LogLevel()
	if flagVerbose {
		level = slog.LevelDebug
	}
	return cfg, newLogger(cmd.ErrOrStderr(), level), nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openStore returns the persistent cache, or an in-memory one when
// --no-cache-file is set. The returned func closes it.
func openStore(cfg *config.Config, log *slog.Logger) (cache.Store, func(), error) {
	opts := []cache.Option{cache.WithTTL(cfg.CacheTTL()), cache.WithLogger(log)}
	if flagNoCacheFile {
		return cache.NewMemory(opts...), func() {}, nil
	}
	db, err := cache.Open(config.CachePath(), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}
	return db, func() { db.Close() }, nil
}

// buildProviders returns the configured providers in their fixed order:
// NewsAPI, TheNewsAPI, then the curated feeds. Keyed providers without a key
// are skipped. The feed provider keeps its own snapshot in store.
func buildProviders(cfg *config.Config, store cache.Store, log *slog.Logger) []provider.Provider {
	policy := cfg.Policy()
	timeout := cfg.HTTPTimeout()

	var out []provider.Provider
	if cfg.NewsAPIActive() {
		out = append(out, newsapi.New(newsapi.Options{
			BaseURL:       cfg.NewsAPI.BaseURL,
			APIKey:        cfg.NewsAPI.APIKey,
			Timeout:       timeout,
			RatePerSecond: cfg.NewsAPI.Rate,
			Policy:        &policy,
			Logger:        log.With(slog.String("provider", newsapi.Name)),
		}))
	} else if cfg.NewsAPI.Enabled {
		log.Debug("Skipping provider without key", slog.String("provider", newsapi.Name))
	}

	if cfg.TheNewsAPIActive() {
		out = append(out, thenewsapi.New(thenewsapi.Options{
			BaseURL:       cfg.TheNewsAPI.BaseURL,
			APIToken:      cfg.TheNewsAPI.APIKey,
			Timeout:       timeout,
			RatePerSecond: cfg.TheNewsAPI.Rate,
			Policy:        &policy,
			Logger:        log.With(slog.String("provider", thenewsapi.Name)),
		}))
	} else if cfg.TheNewsAPI.Enabled {
		log.Debug("Skipping provider without key", slog.String("provider", thenewsapi.Name))
	}

	if cfg.Feeds.Enabled {
		feedLog := log.With(slog.String("provider", feed.Name))
		var fetcher feed.Fetcher
		switch strings.ToLower(cfg.Feeds.Mode) {
		case config.ModeDirect:
			fetcher = feed.NewDirect(&http.Client{Timeout: timeout})
		default:
			fetcher = feed.NewConverter(cfg.Feeds.ConverterURL, cfg.Feeds.APIKey, provider.NewClient(provider.ClientOptions{
				Timeout:       timeout,
				RatePerSecond: cfg.Feeds.Rate,
				Burst:         cfg.Feeds.Concurrency,
				Logger:        feedLog,
			}))
		}
		out = append(out, feed.New(fetcher, feed.Options{
			Feeds:       cfg.Feeds.URLs,
			Concurrency: cfg.Feeds.Concurrency,
			Policy:      &policy,
			Logger:      feedLog,
			Store:       store,
		}))
	}
	return out
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
