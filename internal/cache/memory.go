package cache

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/matheuskafuri/milnews/internal/article"
)

// Memory is a process-local Store. Snapshots are kept serialized so callers
// never share slices with the cache.
type Memory struct {
	opts options

	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Memory{opts: o, entries: make(map[string][]byte)}
}

func (m *Memory) load(key string) (envelope, bool) {
	m.mu.RLock()
	raw, ok := m.entries[Namespace+key]
	m.mu.RUnlock()
	if !ok {
		return envelope{}, false
	}
	env, err := decode(raw)
	if err != nil {
		m.opts.logger.Warn("Failed to read cache", slog.String("key", key), slog.Any("error", err))
		return envelope{}, false
	}
	return env, true
}

func (m *Memory) Get(key string) ([]article.Article, bool) {
	env, ok := m.load(key)
	if !ok || !m.opts.fresh(env) {
		return nil, false
	}
	return env.Data, true
}

func (m *Memory) GetStale(key string) ([]article.Article, bool) {
	env, ok := m.load(key)
	if !ok {
		return nil, false
	}
	return env.Data, true
}

func (m *Memory) Set(key string, articles []article.Article) {
	raw, err := encode(articles, m.opts.clock())
	if err != nil {
		m.opts.logger.Warn("Failed to cache data", slog.Any("error", &WriteError{Key: key, Err: err}))
		return
	}
	m.mu.Lock()
	m.entries[Namespace+key] = raw
	m.mu.Unlock()
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, Namespace) {
			delete(m.entries, k)
		}
	}
	return nil
}

// Stats reports the current entries.
func (m *Memory) Stats() (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var s Stats
	for k, raw := range m.entries {
		if !strings.HasPrefix(k, Namespace) {
			continue
		}
		env, err := decode(raw)
		if err != nil {
			continue
		}
		s.add(time.UnixMilli(env.Timestamp))
	}
	return s, nil
}

func (s *Stats) add(t time.Time) {
	s.Entries++
	if s.Oldest.IsZero() || t.Before(s.Oldest) {
		s.Oldest = t
	}
	if t.After(s.Newest) {
		s.Newest = t
	}
}
