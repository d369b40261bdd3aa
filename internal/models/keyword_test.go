package models

import (
	"testing"
	"time"
)

func TestKeyword_AppliesTo(t *testing.T) {
	reddit := PlatformReddit
	empty := ""

	tests := []struct {
		name     string
		platform *string
		target   string
		expected bool
	}{
		{"nil platform applies everywhere", nil, PlatformHackerNews, true},
		{"empty platform applies everywhere", &empty, PlatformReddit, true},
		{"matching platform", &reddit, PlatformReddit, true},
		{"other platform", &reddit, PlatformHackerNews, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := &Keyword{Platform: tt.platform}
			if got := k.AppliesTo(tt.target); got != tt.expected {
				t.Errorf("AppliesTo(%q) = %v, want %v", tt.target, got, tt.expected)
			}
		})
	}
}

func TestKeywordDelta_Add(t *testing.T) {
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)

	var d KeywordDelta
	if !d.IsZero() {
		t.Fatal("IsZero() = false for empty delta")
	}

	d.Add(KeywordDelta{TimesUsed: 1, LeadsFound: 2, ScoreSum: 9, LastLeadAt: &later})
	d.Add(KeywordDelta{TimesUsed: 1, LeadsFound: 1, HighScoreLeads: 1, ScoreSum: 7, LastLeadAt: &earlier})

	if d.TimesUsed != 2 || d.LeadsFound != 3 || d.HighScoreLeads != 1 || d.ScoreSum != 16 {
		t.Errorf("Add() = %+v, want totals 2/3/1/16", d)
	}
	if d.LastLeadAt == nil || !d.LastLeadAt.Equal(later) {
		t.Errorf("LastLeadAt = %v, want %v", d.LastLeadAt, later)
	}
}
