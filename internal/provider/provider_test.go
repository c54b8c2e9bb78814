package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/matheuskafuri/milnews/internal/article"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRange(t *testing.T) {
	now := time.Date(2025, 11, 20, 23, 30, 0, 0, time.UTC)
	from, to := DateRange(now)
	assert.Equal(t, "2025-10-21", from)
	assert.Equal(t, "2025-11-20", to)
}

func TestDateRangeUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	now := time.Date(2025, 11, 21, 2, 0, 0, 0, loc) // 2025-11-20 19:00 UTC
	_, to := DateRange(now)
	assert.Equal(t, "2025-11-20", to)
}

func TestLimit(t *testing.T) {
	list := make([]article.Article, 5)
	assert.Len(t, Limit(list, 3), 3)
	assert.Len(t, Limit(list, 10), 5)
	assert.Len(t, Limit(list, 0), 0)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("NewsAPI", nil))

	err := Wrap("NewsAPI", ErrRateLimited)
	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "NewsAPI", pe.Provider)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, "NewsAPI: rate limited", err.Error())

	// Already wrapped errors keep their original provider.
	again := Wrap("Other", err)
	require.ErrorAs(t, again, &pe)
	assert.Equal(t, "NewsAPI", pe.Provider)
}

func TestClientGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "navy", r.URL.Query().Get("q"))
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{Header: http.Header{"X-Api-Key": {"secret"}}})
	var out struct {
		Status string `json:"status"`
	}
	err := c.GetJSON(context.Background(), srv.URL, url.Values{"q": {"navy"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Status)
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusTooManyRequests, "", ErrRateLimited},
		{http.StatusInternalServerError, "boom", ErrBadStatus},
		{http.StatusUnauthorized, "bad key", ErrBadStatus},
		{http.StatusOK, "<html>", ErrBadResponse},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		}))
		c := NewClient(ClientOptions{})
		var out map[string]any
		err := c.GetJSON(context.Background(), srv.URL, nil, &out)
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
		srv.Close()
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(ClientOptions{Timeout: time.Second})
	var out map[string]any
	err := c.GetJSON(context.Background(), srv.URL, nil, &out)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrBadStatus))
}

func TestClientRateLimiterHonoursContext(t *testing.T) {
	c := NewClient(ClientOptions{RatePerSecond: 0.001, Burst: 1})
	// Drain the single token.
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	var out map[string]any
	err := c.GetJSON(ctx, "http://127.0.0.1:1", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}
