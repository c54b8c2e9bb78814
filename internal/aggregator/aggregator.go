// Package aggregator is the engine's entry point. It consults the cache,
// fans out to every provider, and merges whatever comes back into a single
// deduplicated, newest-first feed.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheuskafuri/milnews/internal/article"
	"github.com/matheuskafuri/milnews/internal/cache"
	"github.com/matheuskafuri/milnews/internal/merge"
	"github.com/matheuskafuri/milnews/internal/provider"
)

const (
	DefaultQuery = "defense"
	DefaultCount = 20

	// CacheSource labels results served from the cache.
	CacheSource = "Cache"

	MsgAllSourcesFailed = "Tidak dapat mengambil berita dari semua sumber."
	MsgUnexpected       = "Terjadi kesalahan saat mengambil berita."
)

// Result is the outcome of one aggregation. When Success is false only
// Error is meaningful and Articles is empty.
type Result struct {
	Success      bool
	Articles     []article.Article
	TotalResults int
	Source       string
	Cached       bool
	Error        string
}

func success(articles []article.Article, source string, cached bool) Result {
	return Result{
		Success:      true,
		Articles:     articles,
		TotalResults: len(articles),
		Source:       source,
		Cached:       cached,
	}
}

func failure(msg string) Result {
	return Result{Error: msg, Articles: []article.Article{}}
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.log = logger
		}
	}
}

// Aggregator combines providers behind a cache.
type Aggregator struct {
	providers []provider.Provider
	store     cache.Store
	log       *slog.Logger
}

// New builds an Aggregator. Providers are queried concurrently but their
// results are combined in the order given here.
func New(store cache.Store, providers []provider.Provider, opts ...Option) *Aggregator {
	a := &Aggregator{
		providers: providers,
		store:     store,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type outcome struct {
	name     string
	articles []article.Article
	err      error
}

// Aggregate returns up to count relevant articles for query. An empty query
// or non-positive count selects the defaults.
func (a *Aggregator) Aggregate(ctx context.Context, query string, count int) (res Result) {
	if query == "" {
		query = DefaultQuery
	}
	if count <= 0 {
		count = DefaultCount
	}
	key := cache.Key(query, count)
	log := a.log.With(
		slog.String("run_id", uuid.NewString()),
		slog.String("query", query),
		slog.Int("count", count),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Aggregation failed", slog.Any("panic", r))
			res = a.fallback(log, key, MsgUnexpected)
		}
	}()

	if cached, ok := a.store.Get(key); ok && len(cached) > 0 {
		log.Info("Using cached data", slog.Int("articles", len(cached)))
		return success(cached, CacheSource, true)
	}

	start := time.Now()
	outcomes := a.fanOut(ctx, query, count, log)

	lists := make([][]article.Article, len(outcomes))
	var sources []string
	total := 0
	for i, o := range outcomes {
		lists[i] = o.articles
		total += len(o.articles)
		if len(o.articles) > 0 {
			sources = append(sources, o.name)
		}
	}

	if total == 0 {
		log.Warn("All sources failed, checking cache")
		return a.fallback(log, key, MsgAllSourcesFailed)
	}

	articles := merge.Merge(lists, count)
	a.store.Set(key, articles)

	source := strings.Join(sources, " + ")
	log.Info("Aggregation completed",
		slog.Int("articles", len(articles)),
		slog.String("sources", source),
		slog.Duration("duration", time.Since(start)),
	)
	return success(articles, source, false)
}

// fanOut calls every provider concurrently and waits for all of them. A
// failing or panicking provider contributes an empty list.
func (a *Aggregator) fanOut(ctx context.Context, query string, count int, log *slog.Logger) []outcome {
	outcomes := make([]outcome, len(a.providers))
	var wg sync.WaitGroup
	for i, p := range a.providers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = a.call(ctx, p, query, count)
			if err := outcomes[i].err; err != nil {
				log.Warn("Provider failed", slog.String("provider", p.Name()), slog.Any("error", err))
				return
			}
			log.Debug("Provider returned", slog.String("provider", p.Name()), slog.Int("articles", len(outcomes[i].articles)))
		}()
	}
	wg.Wait()
	return outcomes
}

func (a *Aggregator) call(ctx context.Context, p provider.Provider, query string, count int) (o outcome) {
	o.name = p.Name()
	defer func() {
		if r := recover(); r != nil {
			o.articles = nil
			o.err = provider.Wrap(o.name, fmt.Errorf("panic: %v", r))
		}
	}()
	articles, err := p.Fetch(ctx, query, count)
	if err != nil {
		return outcome{name: o.name, err: provider.Wrap(o.name, err)}
	}
	o.articles = articles
	return o
}

func (a *Aggregator) fallback(log *slog.Logger, key, msg string) Result {
	if stale, ok := a.store.GetStale(key); ok && len(stale) > 0 {
		log.Info("Using stale cache as fallback", slog.Int("articles", len(stale)))
		return success(stale, CacheSource, true)
	}
	log.Error("No articles available", slog.String("error", msg))
	return failure(msg)
}

// ClearCache removes every cached snapshot.
func (a *Aggregator) ClearCache() error {
	return a.store.Clear()
}
