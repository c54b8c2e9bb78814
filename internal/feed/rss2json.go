package feed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/matheuskafuri/milnews/internal/article"
	"github.com/matheuskafuri/milnews/internal/provider"
)

// DefaultConverterURL is the public rss2json endpoint.
const DefaultConverterURL = "https://api.rss2json.com/v1/api.json"

type rss2jsonResponse struct {
	Status string `json:"status"`
	Feed   struct {
		Title string `json:"title"`
	} `json:"feed"`
	Items []rss2jsonItem `json:"items"`
}

type rss2jsonItem struct {
	Title       string `json:"title"`
	PubDate     string `json:"pubDate"`
	Link        string `json:"link"`
	Thumbnail   string `json:"thumbnail"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Enclosure   struct {
		Link string `json:"link"`
	} `json:"enclosure"`
}

// Converter fetches feeds through a feed-to-JSON conversion service.
type Converter struct {
	endpoint string
	apiKey   string
	client   *provider.Client
	now      func() time.Time
}

// NewConverter builds a Converter. An empty endpoint selects
// DefaultConverterURL; apiKey is optional.
func NewConverter(endpoint, apiKey string, client *provider.Client) *Converter {
	if endpoint == "" {
		endpoint = DefaultConverterURL
	}
	return &Converter{endpoint: endpoint, apiKey: apiKey, client: client, now: time.Now}
}

func (c *Converter) Fetch(ctx context.Context, feedURL string) ([]article.Article, error) {
	params := url.Values{
		"rss_url": {feedURL},
		"count":   {strconv.Itoa(PerFeedLimit)},
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	var resp rss2jsonResponse
	if err := c.client.GetJSON(ctx, c.endpoint, params, &resp); err != nil {
		return nil, feedError(feedURL, err)
	}
	if resp.Status != "ok" {
		return nil, feedError(feedURL, fmt.Errorf("%w: status %q", provider.ErrBadResponse, resp.Status))
	}

	now := c.now()
	source := sourceFor(resp.Feed.Title)
	out := make([]article.Article, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, article.Article{
			Title:       item.Title,
			// Markup is removed before relevance filtering sees the text.
			Description: stripHTML(item.Description),
			URL:         item.Link,
			ImageURL:    firstNonEmpty(item.Thumbnail, item.Enclosure.Link, PlaceholderImage),
			PublishedAt: publishedOr(article.ParseTime(item.PubDate), now),
			Source:      source,
			Content:     firstNonEmpty(item.Content, item.Description),
		})
	}
	return out, nil
}
