// Package newsapi adapts the NewsAPI.org "everything" endpoint.
package newsapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/matheuskafuri/milnews/internal/article"
	"github.com/matheuskafuri/milnews/internal/provider"
	"github.com/matheuskafuri/milnews/internal/relevance"
)

const (
	Name           = "NewsAPI"
	DefaultBaseURL = "https://newsapi.org/v2"

	excludeDomains = "biztoc.com,fark.com,sportingnews.com,espn.com,bleacherreport.com"
)

type response struct {
	Status   string       `json:"status"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Articles []rawArticle `json:"articles"`
}

type rawArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Options configures a Provider.
type Options struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerSecond float64
	HTTPClient    *http.Client
	Policy        *relevance.Policy
	Logger        *slog.Logger
	Now           func() time.Time
}

// Provider queries NewsAPI.org.
type Provider struct {
	base   string
	client *provider.Client
	policy relevance.Policy
	now    func() time.Time
}

// New builds a NewsAPI provider.
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
		base: base,
		client: provider.NewClient(provider.ClientOptions{
			Timeout:       opts.Timeout,
			RatePerSecond: opts.RatePerSecond,
			Header:        http.Header{"X-Api-Key": {opts.APIKey}},
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
		"q":              {query},
		"language":       {"en"},
		"sortBy":         {"publishedAt"},
		"from":           {from},
		"to":             {to},
		"pageSize":       {strconv.Itoa(count * provider.Oversample)},
		"excludeDomains": {excludeDomains},
	}

	var resp response
	if err := p.client.GetJSON(ctx, p.base+"/everything", params, &resp); err != nil {
		return nil, provider.Wrap(Name, err)
	}
	if resp.Status != "ok" {
		return nil, provider.Wrap(Name, fmt.Errorf("%w: status %q %s", provider.ErrBadResponse, resp.Status, resp.Message))
	}

	out := make([]article.Article, 0, count)
	for _, raw := range resp.Articles {
		if len(out) == count {
			break
		}
		if raw.Title == "" || raw.URL == "" {
			continue
		}
		if !p.policy.IsRelevant(raw.Title, raw.Description, raw.URL) {
			continue
		}
		out = append(out, article.Article{
			Title:       raw.Title,
			Description: raw.Description,
			URL:         raw.URL,
			ImageURL:    raw.URLToImage,
			PublishedAt: article.ParseTime(raw.PublishedAt),
			Source:      article.Source{ID: raw.Source.ID, Name: raw.Source.Name},
			Content:     raw.Content,
		})
	}
	return out, nil
}
