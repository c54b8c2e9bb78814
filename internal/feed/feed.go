// Package feed implements the curated-feed provider. It has no query: every
// call returns the recent items of a fixed list of defense feeds, filtered
// with the same relevance policy as the search providers.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/matheuskafuri/milnews/internal/article"
	"github.com/matheuskafuri/milnews/internal/cache"
	"github.com/matheuskafuri/milnews/internal/merge"
	"github.com/matheuskafuri/milnews/internal/provider"
	"github.com/matheuskafuri/milnews/internal/relevance"
	"golang.org/x/sync/errgroup"
)

const (
	Name = "RSS"

	// PerFeedLimit caps the items taken from a single feed.
	PerFeedLimit = 10

	PlaceholderImage  = "https://images.unsplash.com/photo-1526374965328-7f61d4dc18c5?w=400"
	PlaceholderSource = "RSS Feed"
	PlaceholderID     = "rss-feed"

	// CacheKey holds the filtered feed snapshot. Feeds take no query, so
	// one snapshot serves every request.
	CacheKey = "rss"
)

// ErrNoItems is returned when no feed produced a single item.
var ErrNoItems = errors.New("no articles from RSS feeds")

// DefaultFeeds is the curated defense feed list.
var DefaultFeeds = []string{
	"https://www.defensenews.com/arc/outboundfeeds/rss/",
	"https://www.militarytimes.com/arc/outboundfeeds/rss/",
	"https://breakingdefense.com/feed/",
	"https://theaviationist.com/feed/",
	"https://www.navalnews.com/feed/",
	"https://www.defenseone.com/rss/all/",
	"https://www.thedefensepost.com/feed/",
	"https://www.nationaldefensemagazine.org/rss",
	"https://warontherocks.com/feed/",
	"https://www.darpa.mil/news/rss",
	"https://www.defense.gov/DesktopModules/ArticleCS/RSS.ashx",
}

// Fetcher loads up to PerFeedLimit items from one feed URL.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]article.Article, error)
}

// Options configures a Provider.
type Options struct {
	Feeds []string
	// Concurrency bounds simultaneous feed requests; <= 0 fetches all at once.
	Concurrency int
	Policy      *relevance.Policy
	Logger      *slog.Logger
	// Store caches the filtered snapshot under CacheKey; nil disables it.
	Store cache.Store
}

// Provider fans out over the curated feeds.
type Provider struct {
	feeds       []string
	fetcher     Fetcher
	concurrency int
	policy      relevance.Policy
	store       cache.Store
	log         *slog.Logger
}

// New builds a feed provider backed by fetcher.
func New(fetcher Fetcher, opts Options) *Provider {
	feeds := opts.Feeds
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	policy := relevance.Default()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		feeds:       feeds,
		fetcher:     fetcher,
		concurrency: opts.Concurrency,
		policy:      policy,
		store:       opts.Store,
		log:         log,
	}
}

func (p *Provider) Name() string { return Name }

// Fetch ignores query. A fresh cached snapshot is served without touching
// the feeds; when every feed fails an expired one is served instead.
func (p *Provider) Fetch(ctx context.Context, _ string, count int) ([]article.Article, error) {
	if p.store != nil {
		if cached, ok := p.store.Get(CacheKey); ok && len(cached) > 0 {
			p.log.Debug("Using cached RSS data", slog.Int("articles", len(cached)))
			return merge.Truncate(cached, count), nil
		}
	}

	results := make([][]article.Article, len(p.feeds))

	var g errgroup.Group
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}
	for i, u := range p.feeds {
		g.Go(func() error {
			items, err := p.fetcher.Fetch(ctx, u)
			if err != nil {
				p.log.Warn("Failed to fetch RSS feed", slog.String("url", u), slog.Any("error", err))
				return nil
			}
			results[i] = provider.Limit(items, PerFeedLimit)
			return nil
		})
	}
	g.Wait()

	var all []article.Article
	for _, r := range results {
		all = append(all, r...)
	}
	if len(all) == 0 {
		if p.store != nil {
			if stale, ok := p.store.GetStale(CacheKey); ok && len(stale) > 0 {
				p.log.Info("Using expired RSS cache as fallback", slog.Int("articles", len(stale)))
				return merge.Truncate(stale, count), nil
			}
		}
		return nil, provider.Wrap(Name, ErrNoItems)
	}

	relevant := make([]article.Article, 0, len(all))
	for _, a := range all {
		if strings.TrimSpace(a.Title) == "" || a.URL == "" {
			continue
		}
		if p.policy.IsRelevant(a.Title, a.Description, a.URL) {
			relevant = append(relevant, a)
		}
	}
	merge.SortByPublished(relevant)
	snapshot := merge.Dedupe(relevant)
	if p.store != nil && len(snapshot) > 0 {
		p.store.Set(CacheKey, snapshot)
	}
	out := merge.Truncate(snapshot, count)

	p.log.Debug("Fetched RSS feeds",
		slog.Int("feeds", len(p.feeds)),
		slog.Int("items", len(all)),
		slog.Int("relevant", len(out)),
	)
	return out, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// sourceFor derives the source label from a feed title.
func sourceFor(feedTitle string) article.Source {
	if strings.TrimSpace(feedTitle) == "" {
		return article.Source{ID: PlaceholderID, Name: PlaceholderSource}
	}
	return article.Source{
		ID:   whitespace.ReplaceAllString(strings.ToLower(feedTitle), "-"),
		Name: feedTitle,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func publishedOr(t time.Time, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t
}

func feedError(feedURL string, err error) error {
	return fmt.Errorf("fetching %s: %w", feedURL, err)
}
