// Package scoring rates candidates with a heuristic score and an optional
// AI assessment, then decides whether they merit a notification.
package scoring

import (
	"regexp"
	"strings"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// Signal names recorded in the breakdown.
const (
	SignalBudget      = "budget"
	SignalUrgency     = "urgency"
	SignalTimeline    = "timeline"
	SignalContact     = "contact"
	SignalTechHigh    = "tech_high"
	SignalTechLow     = "tech_low"
	SignalProjectType = "project_type"
)

type family struct {
	name     string
	points   int
	patterns []*regexp.Regexp
}

func (f family) matches(text string) bool {
	for _, re := range f.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

var positiveFamilies = []family{
	{
		name:   SignalBudget,
		points: 3,
		patterns: compile(
			`[$£€]\s?\d`,
			`\b\d[\d,.]*\s?k?\s?(usd|eur|gbp|dollars)\b`,
			`\bbudget\s*(:|=|is\b|of\b|around\b|~)`,
			`\bpaid (project|gig|work|role)\b`,
			`\bhourly rate\b`,
			`\bfixed[- ]price\b`,
			`\b\d+\s?/\s?(hr|hour)\b`,
		),
	},
	{
		name:   SignalUrgency,
		points: 2,
		patterns: compile(
			`\basap\b`,
			`\burgent(ly)?\b`,
			`\btoday\b`,
			`\btonight\b`,
			`\bthis week\b`,
			`\bdeadline\b`,
			`\bimmediately\b`,
			`\bright away\b`,
			`\bas soon as possible\b`,
		),
	},
	{
		name:   SignalTimeline,
		points: 1,
		patterns: compile(
			`\b\d+\s*(-\s*\d+\s*)?(days?|weeks?|months?)\b`,
			`\bby (monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`,
			`\bby (the )?end of (the )?(week|month)\b`,
			`\b(timeline|timeframe|time frame|duration)\b`,
		),
	},
	{
		name:   SignalContact,
		points: 2,
		patterns: compile(
			`\b(dm|pm|message|contact|email|ping) me\b`,
			`[\w.+-]+@[\w-]+\.[a-z]{2,}`,
			`\b(reply|comment) below\b`,
			`\bsend (me )?(your )?(portfolio|rates?|quote)\b`,
			`\breach out\b`,
		),
	},
	{
		name:   SignalProjectType,
		points: 1,
		patterns: compile(
			`\blooking for\b`,
			`\bseeking (a|an)\b`,
			`\bscope of work\b`,
			`\bdeliverables?\b`,
			`\brequirements\b`,
			`\bproject (brief|details|description)\b`,
		),
	},
}

// Technology tiers: only the best matching tier counts.
var (
	techHigh = family{
		name:   SignalTechHigh,
		points: 2,
		patterns: compile(
			`\b(react|vue|angular|svelte|node(\.?js)?|typescript|next\.?js|api|apis|full[- ]?stack|saas|golang|django)\b`,
		),
	}
	techLow = family{
		name:     SignalTechLow,
		points:   1,
		patterns: compile(`\b(wordpress|html|css|landing page|shopify|wix|squarespace)\b`),
	}
)

// Red flags subtract independently.
var redFlags = []family{
	{name: "free", points: -2, patterns: compile(`\bfree\b`)},
	{name: "unpaid", points: -3, patterns: compile(`\bunpaid\b`)},
	{name: "equity_only", points: -4, patterns: compile(`\bequity[- ]only\b`)},
	{name: "exposure", points: -2, patterns: compile(`\bexposure\b`)},
	{name: "volunteer", points: -3, patterns: compile(`\bvolunteer(s|ing)?\b`)},
	{name: "internship", points: -2, patterns: compile(`\binternships?\b`)},
	{name: "revenue_share", points: -2, patterns: compile(`\brevenue[- ]shar(e|ing)\b`)},
	{name: "no_budget", points: -3, patterns: compile(`\bno budget\b`)},
}

// QuickScore rates text from 0 to 10 with deterministic pattern matching.
// Empty text scores 0.
func QuickScore(text string) models.QuickScoreBreakdown {
	b := models.QuickScoreBreakdown{Signals: []models.ScoreSignal{}}

	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return b
	}

	add := func(f family) {
		b.Signals = append(b.Signals, models.ScoreSignal{Name: f.name, Points: f.points})
		b.Raw += f.points
	}

	for _, f := range positiveFamilies {
		if f.matches(lower) {
			add(f)
		}
	}

	switch {
	case techHigh.matches(lower):
		add(techHigh)
	case techLow.matches(lower):
		add(techLow)
	}

	for _, f := range redFlags {
		if f.matches(lower) {
			add(f)
		}
	}

	b.Score = models.ClampScore(b.Raw)
	return b
}
