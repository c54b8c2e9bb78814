// Package relevance decides whether an article belongs to the military and
// defense domain using a denylist of sites plus exclusion and inclusion
// keyword sets. Matching is plain substring matching on lowercased text.
package relevance

import "strings"

// Rule names which step of the policy produced a verdict.
type Rule string

const (
	RuleDeniedDomain Rule = "denied-domain"
	RuleExcluded     Rule = "excluded-term"
	RuleIncluded     Rule = "included-term"
	RuleNoMatch      Rule = "no-inclusion-term"
)

// Verdict explains a relevance decision.
type Verdict struct {
	Relevant bool
	Rule     Rule
	Term     string
}

// Policy holds the keyword sets. The zero value rejects everything.
type Policy struct {
	DeniedDomains []string
	Exclude       []string
	Include       []string
}

var deniedDomains = []string{
	"yahoo.com/sports", "espn.com", "sportingnews.com",
	"bleacherreport.com", "cbssports.com", "si.com", "foxsports.com",
}

var excludeKeywords = []string{
	// Food & lifestyle
	"mustard", "lox", "restaurant", "recipe", "food", "thanksgiving", "gratitude",
	"curry", "bar", "grill", "chef", "cooking", "menu", "dining",

	// Sports & entertainment
	"haaland", "soccer", "football", "basketball", "baseball", "sports",
	"game", "match", "celebs", "celebrity", "anime", "compression shirt",
	"nfl", "nba", "mlb", "fifa", "premier league", "champions league",
	"sec home win", "aggies", "gators", "crimson tide", "longhorns",
	"quarterback", "touchdown", "playoff", "season", "coach",
	"scoring", "wins", "loses", "team wins", "victory over",
	"defeats", "improves to", "college football", "ncaa", "bowl game",
	"espn", "sporting news", "6-0", "undefeated", "rivals", "rankings",
	"usc", "michigan", "trojans", "wolverines", "big ten", "pac-12", "sec",
	"ranked team", "conference", "shines in", "win over", "no. 15",
	"final score", "halftime", "second half", "yards", "rushing",
	"passing", "interception", "field goal", "kickoff",

	// Business & real estate
	"property", "real estate", "jeep wrangler", "for sale", "auction",
	"bringatrailer", "no reserve", "mountain edition",

	// Personal & social
	"obituary", "passed away", "died", "funeral", "marriage", "wedding",
	"dating", "relationship", "stages of marriage", "legacy",

	// Viral
	"pickle costume", "police chasing", "broken water pipe",
	"video shows", "viral video",

	// Natural disasters
	"floods", "landslides", "earthquake", "hurricane",

	// Space launches
	"spacex", "starship", "rocket launch",

	// Politics
	"election",

	// Consumer tech
	"password",
}

var includeKeywords = []string{
	"military", "defense", "defence", "armed forces", "pentagon", "nato",
	"army", "navy", "air force", "marines", "troops", "soldiers",
	"weapons", "missile", "fighter jet", "fighter", "tank", "warship", "submarine",
	"combat", "operation", "deployment", "battalion", "regiment", "brigade",
	"ammunition", "munitions", "artillery", "drone strike", "war", "warfare",
	"conflict", "military base", "defense minister", "defence minister", "general",
	"colonel", "sergeant", "tactical", "strategic", "national security",
	"border", "attack", "strike", "raid", "invasion", "forces",
	"retaliatory", "explosives plant", "blast", "explosion",
	"defense ministry", "defence ministry", "armed", "paramilitary",
}

// Default returns the reference policy. Each call returns fresh slices so
// callers may extend them freely.
func Default() Policy {
	return Policy{
		DeniedDomains: append([]string(nil), deniedDomains...),
		Exclude:       append([]string(nil), excludeKeywords...),
		Include:       append([]string(nil), includeKeywords...),
	}
}

// With returns a copy of p with extra exclusion and inclusion terms appended.
// Terms are lowercased and blanks are dropped.
func (p Policy) With(exclude, include []string) Policy {
	out := Policy{
		DeniedDomains: append([]string(nil), p.DeniedDomains...),
		Exclude:       append([]string(nil), p.Exclude...),
		Include:       append([]string(nil), p.Include...),
	}
	out.Exclude = appendTerms(out.Exclude, exclude)
	out.Include = appendTerms(out.Include, include)
	return out
}

func appendTerms(dst, terms []string) []string {
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			dst = append(dst, t)
		}
	}
	return dst
}

// IsRelevant reports whether the article passes the policy.
func (p Policy) IsRelevant(title, description, sourceURL string) bool {
	return p.Explain(title, description, sourceURL).Relevant
}

// Explain evaluates the policy and reports the deciding rule and term.
func (p Policy) Explain(title, description, sourceURL string) Verdict {
	url := strings.ToLower(sourceURL)
	for _, d := range p.DeniedDomains {
		if strings.Contains(url, d) {
			return Verdict{Rule: RuleDeniedDomain, Term: d}
		}
	}

	text := strings.ToLower(title + " " + description)
	for _, kw := range p.Exclude {
		if strings.Contains(text, kw) {
			return Verdict{Rule: RuleExcluded, Term: kw}
		}
	}
	for _, kw := range p.Include {
		if strings.Contains(text, kw) {
			return Verdict{Relevant: true, Rule: RuleIncluded, Term: kw}
		}
	}
	return Verdict{Rule: RuleNoMatch}
}

var defaultPolicy = Default()

// IsRelevant applies the reference policy.
func IsRelevant(title, description, sourceURL string) bool {
	return defaultPolicy.IsRelevant(title, description, sourceURL)
}
