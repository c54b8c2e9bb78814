package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/milnews/internal/aggregator"
	"github.com/matheuskafuri/milnews/internal/article"
	"github.com/matheuskafuri/milnews/internal/relevance"
)

var (
	// Adaptive colors for dark/light terminals
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#4B5320", Dark: "#9BAF5A"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#F25D5D"}
	colorGreen     = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	cachedBadgeStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	itemIndexStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Width(4).
			Align(lipgloss.Right)

	itemTitleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	itemSourceStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	itemTimeStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	itemBodyStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			PaddingLeft(5).
			Width(90)

	itemLinkStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true).
			PaddingLeft(5)

	verdictAcceptStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	verdictRejectStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)
)

// maxDescription caps the description printed under each headline.
const maxDescription = 240

func renderResult(w io.Writer, res aggregator.Result, since, now time.Time) {
	visible := res.Articles
	if !since.IsZero() {
		visible = make([]article.Article, 0, len(res.Articles))
		for _, a := range res.Articles {
			if !a.PublishedAt.Before(since) {
				visible = append(visible, a)
			}
		}
	}

	summary := fmt.Sprintf("%d articles from %s", len(visible), res.Source)
	if len(visible) != res.TotalResults {
		summary = fmt.Sprintf("%d of %d articles from %s", len(visible), res.TotalResults, res.Source)
	}
	header := headerStyle.Render("milnews") + "  " + headerMetaStyle.Render(summary)
	if res.Cached {
		header += "  " + cachedBadgeStyle.Render("[cached]")
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w)

	for i, a := range visible {
		fmt.Fprintf(w, "%s %s\n", itemIndexStyle.Render(fmt.Sprintf("%d.", i+1)), itemTitleStyle.Render(a.Title))
		fmt.Fprintf(w, "     %s  %s\n",
			itemSourceStyle.Render(a.Source.Name),
			itemTimeStyle.Render(relativeTime(a.PublishedAt, now)))
		if desc := truncate(a.Description, maxDescription); desc != "" {
			fmt.Fprintln(w, itemBodyStyle.Render(desc))
		}
		fmt.Fprintln(w, itemLinkStyle.Render(a.URL))
		fmt.Fprintln(w)
	}
	if len(visible) == 0 {
		fmt.Fprintln(w, headerMetaStyle.Render("No articles in the selected window."))
	}
}

func renderVerdict(w io.Writer, v relevance.Verdict) {
	if v.Relevant {
		fmt.Fprintf(w, "%s  matched %q\n", verdictAcceptStyle.Render("RELEVANT"), v.Term)
		return
	}
	switch v.Rule {
	case relevance.RuleDeniedDomain:
		fmt.Fprintf(w, "%s  source is on the denylist (%q)\n", verdictRejectStyle.Render("REJECTED"), v.Term)
	case relevance.RuleExcluded:
		fmt.Fprintf(w, "%s  contains excluded term %q\n", verdictRejectStyle.Render("REJECTED"), v.Term)
	default:
		fmt.Fprintf(w, "%s  no military or defense term found\n", verdictRejectStyle.Render("REJECTED"))
	}
}

func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
