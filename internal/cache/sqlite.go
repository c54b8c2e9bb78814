package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/matheuskafuri/milnews/internal/article"
	_ "modernc.org/sqlite"
)

// SQLite is a Store persisted in a local SQLite database so snapshots
// survive between CLI invocations.
type SQLite struct {
	readDB  *sql.DB
	writeDB *sql.DB
	opts    options
}

// Open creates or opens the database at dbPath.
func Open(dbPath string, opts ...Option) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &SQLite{writeDB: writeDB, opts: o}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}

	// The read handle is opened after the schema exists; read-only mode
	// cannot create the file.
	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	c.readDB = readDB
	return c, nil
}

func (c *SQLite) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *SQLite) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	return errors.Join(errs...)
}

func (c *SQLite) load(key string) (envelope, bool) {
	var value string
	err := c.readDB.QueryRow("SELECT value FROM kv WHERE key = ?", Namespace+key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.opts.logger.Warn("Failed to read cache", slog.String("key", key), slog.Any("error", err))
		}
		return envelope{}, false
	}
	env, err := decode([]byte(value))
	if err != nil {
		c.opts.logger.Warn("Failed to read cache", slog.String("key", key), slog.Any("error", err))
		return envelope{}, false
	}
	return env, true
}

func (c *SQLite) Get(key string) ([]article.Article, bool) {
	env, ok := c.load(key)
	if !ok {
		return nil, false
	}
	if !c.opts.fresh(env) {
		return nil, false
	}
	age := c.opts.clock().Sub(time.UnixMilli(env.Timestamp))
	c.opts.logger.Debug("Using cached data", slog.String("key", key), slog.Duration("age", age.Truncate(time.Second)))
	return env.Data, true
}

func (c *SQLite) GetStale(key string) ([]article.Article, bool) {
	env, ok := c.load(key)
	if !ok {
		return nil, false
	}
	return env.Data, true
}

func (c *SQLite) Set(key string, articles []article.Article) {
	if err := c.set(key, articles); err != nil {
		c.opts.logger.Warn("Failed to cache data", slog.Any("error", err))
	}
}

func (c *SQLite) set(key string, articles []article.Article) error {
	now := c.opts.clock()
	raw, err := encode(articles, now)
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	_, err = c.writeDB.Exec(`
		INSERT INTO kv (key, value, created_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			created_at = excluded.created_at
	`, Namespace+key, string(raw), now.UnixMilli())
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}

func (c *SQLite) Clear() error {
	_, err := c.writeDB.Exec("DELETE FROM kv WHERE substr(key, 1, ?) = ?", len(Namespace), Namespace)
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Stats reports the entries under Namespace.
func (c *SQLite) Stats() (Stats, error) {
	var (
		s              Stats
		oldest, newest sql.NullInt64
	)
	err := c.readDB.QueryRow(
		"SELECT COUNT(*), MIN(created_at), MAX(created_at) FROM kv WHERE substr(key, 1, ?) = ?",
		len(Namespace), Namespace,
	).Scan(&s.Entries, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("reading cache stats: %w", err)
	}
	if oldest.Valid {
		s.Oldest = time.UnixMilli(oldest.Int64)
	}
	if newest.Valid {
		s.Newest = time.UnixMilli(newest.Int64)
	}
	return s, nil
}
