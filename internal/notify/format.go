package notify

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

const excerptLength = 400

// Subject is the one-line headline for a lead. Line breaks and control
// characters in post text are folded into single spaces.
func Subject(lead *models.Lead) string {
	title := singleLine(lead.Title)
	if title == "" {
		title = excerpt(singleLine(lead.Text), 60)
	}
	return fmt.Sprintf("[%s] %d/10 lead: %s", lead.Platform, lead.FinalScore, title)
}

func singleLine(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// excerpt shortens s to at most n runes on a word boundary.
func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

// summary returns the AI summary, if any.
func summary(lead *models.Lead) string {
	if lead.AIAnalysis == nil {
		return ""
	}
	return lead.AIAnalysis.Summary
}
