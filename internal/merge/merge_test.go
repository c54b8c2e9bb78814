package merge

import (
	"testing"
	"time"

	"github.com/matheuskafuri/milnews/internal/article"
)

var base = time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)

func art(title string, hoursAgo int) article.Article {
	return article.Article{
		Title:       title,
		URL:         "https://example.com/" + title,
		PublishedAt: base.Add(-time.Duration(hoursAgo) * time.Hour),
	}
}

func titles(articles []article.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Navy Tests Drone  ", "navy tests drone"},
		{"NAVY TESTS DRONE", "navy tests drone"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Key(tt.input); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	first := art("Navy Tests Drone", 1)
	first.URL = "https://first.example.com"
	dup := art("  navy tests drone ", 0)
	dup.URL = "https://second.example.com"

	got := Dedupe([]article.Article{first, art("Army Exercise", 2), dup})
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d: %v", len(got), titles(got))
	}
	if got[0].URL != "https://first.example.com" {
		t.Errorf("expected first occurrence kept, got %s", got[0].URL)
	}
	if got[1].Title != "Army Exercise" {
		t.Errorf("expected order of first occurrence preserved, got %v", titles(got))
	}
}

func TestDedupeDropsEmptyTitles(t *testing.T) {
	got := Dedupe([]article.Article{art("", 0), art("   ", 0), art("Missile Test", 1)})
	if len(got) != 1 || got[0].Title != "Missile Test" {
		t.Errorf("expected only the titled article, got %v", titles(got))
	}
}

func TestDedupeIdempotent(t *testing.T) {
	list := []article.Article{art("A", 1), art("B", 2), art("a", 3), art("C", 4)}
	once := Dedupe(list)
	doubled := Dedupe(append(append([]article.Article{}, list...), list...))
	twice := Dedupe(once)

	if !equalStrings(titles(once), titles(doubled)) {
		t.Errorf("merging with itself changed result: %v vs %v", titles(once), titles(doubled))
	}
	if !equalStrings(titles(once), titles(twice)) {
		t.Errorf("dedupe not idempotent: %v vs %v", titles(once), titles(twice))
	}
	if !equalStrings(titles(once), []string{"A", "B", "C"}) {
		t.Errorf("unexpected survivors: %v", titles(once))
	}
}

func TestSortByPublishedStableDescending(t *testing.T) {
	list := []article.Article{
		art("old", 10),
		art("tie-1", 2),
		art("new", 0),
		art("tie-2", 2),
		art("tie-3", 2),
		{Title: "undated"},
	}
	SortByPublished(list)

	want := []string{"new", "tie-1", "tie-2", "tie-3", "old", "undated"}
	if !equalStrings(titles(list), want) {
		t.Errorf("got %v, want %v", titles(list), want)
	}
	for i := 1; i < len(list); i++ {
		if list[i].PublishedAt.After(list[i-1].PublishedAt) {
			t.Errorf("sequence increases at %d", i)
		}
	}
}

func TestTruncate(t *testing.T) {
	list := []article.Article{art("A", 0), art("B", 1), art("C", 2)}
	tests := []struct {
		n    int
		want int
	}{
		{2, 2},
		{3, 3},
		{10, 3},
		{0, 3},
		{-1, 3},
	}
	for _, tt := range tests {
		if got := len(Truncate(list, tt.n)); got != tt.want {
			t.Errorf("Truncate(_, %d) returned %d articles, want %d", tt.n, got, tt.want)
		}
	}
}

func TestMerge(t *testing.T) {
	newsapi := []article.Article{art("Navy Tests Drone", 5), art("Army Exercise", 3)}
	thenews := []article.Article{art("navy tests drone", 1), art("Missile Launch", 0)}
	rss := []article.Article{art("Border Patrol Raid", 4), art("", 0)}

	got := Merge([][]article.Article{newsapi, thenews, rss}, 3)
	want := []string{"Missile Launch", "Army Exercise", "Border Patrol Raid"}
	if !equalStrings(titles(got), want) {
		t.Errorf("got %v, want %v", titles(got), want)
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil, 5); len(got) != 0 {
		t.Errorf("expected no articles, got %d", len(got))
	}
}
