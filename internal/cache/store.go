// Package cache stores aggregated article snapshots keyed by query and page
// size. Entries are fresh for a TTL and remain readable afterwards through
// GetStale, which callers use only when every live source has failed.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/matheuskafuri/milnews/internal/article"
)

const (
	// Namespace prefixes every key written by this package. Clear removes
	// exactly the keys carrying it.
	Namespace = "military_info_cache_"

	DefaultTTL = 15 * time.Minute
)

// Store is the contract the aggregator depends on. Set never fails from the
// caller's point of view; write errors are logged and dropped.
type Store interface {
	Get(key string) ([]article.Article, bool)
	GetStale(key string) ([]article.Article, bool)
	Set(key string, articles []article.Article)
	Clear() error
}

// Stats summarizes the entries under Namespace.
type Stats struct {
	Entries int
	Oldest  time.Time
	Newest  time.Time
}

// Key builds the composite cache key for a request.
func Key(query string, count int) string {
	return query + "_" + strconv.Itoa(count)
}

// WriteError reports a snapshot that could not be serialized or stored.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("caching %s: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// envelope is the persisted form: {"data": [...], "timestamp": <epoch ms>}.
type envelope struct {
	Data      []article.Article `json:"data"`
	Timestamp int64             `json:"timestamp"`
}

func encode(articles []article.Article, at time.Time) ([]byte, error) {
	return json.Marshal(envelope{Data: articles, Timestamp: at.UnixMilli()})
}

func decode(raw []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("decoding cache entry: %w", err)
	}
	return env, nil
}

// Option configures a store.
type Option func(*options)

type options struct {
	ttl    time.Duration
	clock  func() time.Time
	logger *slog.Logger
}

func defaultOptions() options {
	return options{ttl: DefaultTTL, clock: time.Now, logger: slog.Default()}
}

// WithTTL sets the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the logger used for best-effort failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func (o options) fresh(env envelope) bool {
	age := o.clock().Sub(time.UnixMilli(env.Timestamp))
	return age < o.ttl
}
