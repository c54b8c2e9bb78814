// Package thenewsapi adapts the TheNewsAPI.com "all news" endpoint.
package thenewsapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matheuskafuri/milnews/internal/article"
	"github.com/matheuskafuri/milnews/internal/provider"
	"github.com/matheuskafuri/milnews/internal/relevance"
)

const (
	Name           = "TheNewsAPI"
	DefaultBaseURL = "https://api.thenewsapi.com/v1/news"
)

// TheNewsAPI has no excludeDomains parameter, so aggregator hosts are
// dropped client side.
var blockedHosts = []string{"biztoc.com"}

type response struct {
	Data []rawArticle `json:"data"`
}

type rawArticle struct {
	UUID        string `json:"uuid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Snippet     string `json:"snippet"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	PublishedAt string `json:"published_at"`
	Source      string `json:"source"`
}

// Options configures a Provider.
type Options struct {
	BaseURL       string
	APIToken      string
	Timeout       time.Duration
	RatePerSecond float64
	HTTPClient    *http.Client
	Policy        *relevance.Policy
	Logger        *slog.Logger
	Now           func() time.Time
}

// Provider queries TheNewsAPI.com.
type Provider struct {
	base   string
	token  string
	client *provider.Client
	policy relevance.Policy
	now    func() time.Time
}

// New builds a TheNewsAPI provider.
func New(opts Options) *Provider {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	policy := relevance.Default()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Provider{
		base:  base,
		token: opts.APIToken,
		client: provider.NewClient(provider.ClientOptions{
			Timeout:       opts.Timeout,
			RatePerSecond: opts.RatePerSecond,
			HTTPClient:    opts.HTTPClient,
			Logger:        opts.Logger,
		}),
		policy: policy,
		now:    now,
	}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Fetch(ctx context.Context, query string, count int) ([]article.Article, error) {
	from, to := provider.DateRange(p.now())
	params := url.Values{
		"api_token":        {p.token},
		"search":           {query},
		"language":         {"en"},
		"published_after":  {from},
		"published_before": {to},
		"limit":            {strconv.Itoa(count * provider.Oversample)},
		"sort":             {"published_at"},
	}

	var resp response
	if err := p.client.GetJSON(ctx, p.base+"/all", params, &resp); err != nil {
		return nil, provider.Wrap(Name, err)
	}
	if resp.Data == nil {
		return nil, provider.Wrap(Name, fmt.Errorf("%w: no data", provider.ErrBadResponse))
	}

	out := make([]article.Article, 0, count)
	for _, raw := range resp.Data {
		if len(out) == count {
			break
		}
		if raw.Title == "" || raw.URL == "" || blocked(raw.URL) {
			continue
		}
		desc := raw.Description
		if desc == "" {
			desc = raw.Snippet
		}
		if !p.policy.IsRelevant(raw.Title, desc, raw.URL) {
			continue
		}
		out = append(out, article.Article{
			Title:       raw.Title,
			Description: desc,
			URL:         raw.URL,
			ImageURL:    raw.ImageURL,
			PublishedAt: article.ParseTime(raw.PublishedAt),
			Source:      article.Source{ID: raw.Source, Name: raw.Source},
			Content:     raw.Description,
		})
	}
	return out, nil
}

func blocked(rawURL string) bool {
	for _, h := range blockedHosts {
		if strings.Contains(rawURL, h) {
			return true
		}
	}
	return false
}
