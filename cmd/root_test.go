package cmd

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/milnews/internal/aggregator"
	"github.com/matheuskafuri/milnews/internal/article"
	"github.com/matheuskafuri/milnews/internal/config"
	"github.com/matheuskafuri/milnews/internal/relevance"
)

func TestParseSince(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		got, err := parseSince(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseSince(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSince(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSince(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "unknown date"},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
		{now.Add(-30 * 24 * time.Hour), "Oct 21, 2025"},
	}
	for _, tt := range tests {
		if got := relativeTime(tt.t, now); got != tt.want {
			t.Errorf("relativeTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  short\n text ", 20); got != "short text" {
		t.Errorf("expected whitespace collapsed, got %q", got)
	}
	if got := truncate("abcdefghij", 4); got != "abcd..." {
		t.Errorf("expected truncation, got %q", got)
	}
}

func TestRenderResult(t *testing.T) {
	now := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)
	res := aggregator.Result{
		Success: true,
		Articles: []article.Article{
			{Title: "Navy commissions destroyer", URL: "https://example.com/a", Source: article.Source{Name: "Naval News"}, PublishedAt: now.Add(-time.Hour)},
			{Title: "Army budget review", URL: "https://example.com/b", PublishedAt: now.Add(-72 * time.Hour)},
		},
		TotalResults: 2,
		Source:       "NewsAPI + RSS",
		Cached:       true,
	}

	var buf bytes.Buffer
	renderResult(&buf, res, time.Time{}, now)
	out := buf.String()
	for _, want := range []string{"Navy commissions destroyer", "Army budget review", "2 articles from NewsAPI + RSS", "[cached]", "Naval News", "https://example.com/a"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	renderResult(&buf, res, now.Add(-24*time.Hour), now)
	if strings.Contains(buf.String(), "Army budget review") {
		t.Error("--since should hide older articles")
	}
	if !strings.Contains(buf.String(), "1 of 2 articles") {
		t.Errorf("header should count only shown articles:\n%s", buf.String())
	}

	buf.Reset()
	renderResult(&buf, res, now, now)
	if !strings.Contains(buf.String(), "No articles") {
		t.Error("expected empty window notice")
	}
}

func TestRenderVerdict(t *testing.T) {
	p := relevance.Default()
	tests := []struct {
		title, desc, url string
		want             string
	}{
		{"Navy commissions destroyer", "", "", "RELEVANT"},
		{"Army beats Navy", "college football", "", "excluded term \"football\""},
		{"Army update", "", "https://espn.com/story", "denylist"},
		{"Local bakery opens", "", "", "no military"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		renderVerdict(&buf, p.Explain(tt.title, tt.desc, tt.url))
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("verdict for %q = %q, want it to contain %q", tt.title, buf.String(), tt.want)
		}
	}
}

func TestBuildProviders(t *testing.T) {
	log := newLogger(io.Discard, 0)
	names := func(cfg *config.Config) []string {
		var out []string
		for _, p := range buildProviders(cfg, nil, log) {
			out = append(out, p.Name())
		}
		return out
	}

	cfg := &config.Config{
		NewsAPI:    config.API{Enabled: true, APIKey: "k"},
		TheNewsAPI: config.API{Enabled: true, APIKey: "t"},
		Feeds:      config.Feeds{Enabled: true, Mode: config.ModeDirect},
	}
	if got := strings.Join(names(cfg), ","); got != "NewsAPI,TheNewsAPI,RSS" {
		t.Errorf("unexpected providers %q", got)
	}

	cfg.TheNewsAPI.APIKey = ""
	cfg.Feeds.Mode = config.ModeConverter
	if got := strings.Join(names(cfg), ","); got != "NewsAPI,RSS" {
		t.Errorf("keyless provider should be skipped, got %q", got)
	}

	cfg.NewsAPI.Enabled = false
	cfg.Feeds.Enabled = false
	if got := names(cfg); len(got) != 0 {
		t.Errorf("expected no providers, got %v", got)
	}
}

func TestRootHelpStatesRunDeadline(t *testing.T) {
	if !strings.Contains(rootCmd.Long, "four times http_timeout") {
		t.Errorf("root help should document the run deadline:\n%s", rootCmd.Long)
	}
}
