package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Client performs throttled JSON GET requests against one upstream.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	header  http.Header
	log     *slog.Logger
}

// ClientOptions configures a Client. Zero values select defaults.
type ClientOptions struct {
	Timeout time.Duration
	// RatePerSecond caps outgoing requests; <= 0 disables throttling.
	RatePerSecond float64
	Burst         int
	Header        http.Header
	HTTPClient    *http.Client
	Logger        *slog.Logger
}

// NewClient builds a Client.
func NewClient(opts ClientOptions) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{http: hc, limiter: limiter, header: opts.Header.Clone(), log: log}
}

// GetJSON issues GET base?params and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, base string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("parsing url %s: %w", base, err)
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	c.log.Debug("Upstream responded",
		slog.String("host", u.Host),
		slog.String("path", u.Path),
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s returned %d", ErrRateLimited, u.Host, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w %d from %s: %s", ErrBadStatus, resp.StatusCode, u.Host, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrBadResponse, u.Host, err)
	}
	return nil
}
