// Package merge combines provider outputs into one canonical feed.
package merge

import (
	"sort"
	"strings"

	"github.com/matheuskafuri/milnews/internal/article"
)

// Key returns the dedup key for a title.
func Key(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Dedupe keeps the first article for each normalized title. Articles with an
// empty title are always dropped.
func Dedupe(articles []article.Article) []article.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]article.Article, 0, len(articles))
	for _, a := range articles {
		k := Key(a.Title)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}

// SortByPublished sorts newest first in place. Ties keep input order.
func SortByPublished(articles []article.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}

// Truncate returns at most n articles. n <= 0 keeps everything.
func Truncate(articles []article.Article, n int) []article.Article {
	if n <= 0 || len(articles) <= n {
		return articles
	}
	return articles[:n]
}

// Merge concatenates lists in the given order, deduplicates, sorts newest
// first and truncates to count.
func Merge(lists [][]article.Article, count int) []article.Article {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	all := make([]article.Article, 0, total)
	for _, l := range lists {
		all = append(all, l...)
	}
	out := Dedupe(all)
	SortByPublished(out)
	return Truncate(out, count)
}
