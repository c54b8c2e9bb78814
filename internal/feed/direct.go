package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/matheuskafuri/milnews/internal/article"
	"github.com/mmcdole/gofeed"
)

// Direct parses feeds locally instead of going through a converter.
type Direct struct {
	parser *gofeed.Parser
	now    func() time.Time
}

// NewDirect builds a Direct fetcher. A nil client uses a 15s timeout.
func NewDirect(client *http.Client) *Direct {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	p := gofeed.NewParser()
	p.Client = client
	p.UserAgent = "milnews"
	return &Direct{parser: p, now: time.Now}
}

func (d *Direct) Fetch(ctx context.Context, feedURL string) ([]article.Article, error) {
	f, err := d.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, feedError(feedURL, err)
	}

	now := d.now()
	source := sourceFor(f.Title)
	n := min(len(f.Items), PerFeedLimit)
	out := make([]article.Article, 0, n)
	for _, item := range f.Items[:n] {
		pub := now
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}

		out = append(out, article.Article{
			Title:       item.Title,
			// Markup is removed before relevance filtering sees the text.
			Description: stripHTML(item.Description),
			URL:         item.Link,
			ImageURL:    firstNonEmpty(imageOf(item), PlaceholderImage),
			PublishedAt: pub,
			Source:      source,
			Content:     firstNonEmpty(item.Content, item.Description),
		})
	}
	return out, nil
}

func imageOf(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}
