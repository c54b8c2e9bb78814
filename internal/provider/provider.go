// Package provider defines the contract every upstream news source
// implements and the HTTP plumbing they share.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matheuskafuri/milnews/internal/article"
)

// Oversample is the factor applied to the requested count when asking an
// upstream for raw items, compensating for relevance filter losses.
const Oversample = 4

// Window is the recency window requested from search providers.
const Window = 30 * 24 * time.Hour

var (
	ErrRateLimited = errors.New("rate limited")
	ErrBadStatus   = errors.New("unexpected status")
	ErrBadResponse = errors.New("malformed response")
)

// Provider fetches relevant articles from a single upstream.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, query string, count int) ([]article.Article, error)
}

// Error is a failure from one upstream.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns err as an *Error for the named provider, or nil.
func Wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Provider: name, Err: err}
}

// DateRange returns the from/to dates (YYYY-MM-DD, UTC) covering Window
// ending at now.
func DateRange(now time.Time) (from, to string) {
	now = now.UTC()
	return now.Add(-Window).Format("2006-01-02"), now.Format("2006-01-02")
}

// Limit truncates articles to at most n items.
func Limit(articles []article.Article, n int) []article.Article {
	if n >= 0 && len(articles) > n {
		return articles[:n]
	}
	return articles
}
