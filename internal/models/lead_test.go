package models

import "testing"

func TestShouldNotify(t *testing.T) {
	tests := []struct {
		name      string
		final     int
		threshold int
		expected  bool
	}{
		{"above threshold", 9, 7, true},
		{"at threshold", 7, 7, true},
		{"below threshold", 6, 7, false},
		{"zero threshold", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldNotify(tt.final, tt.threshold); got != tt.expected {
				t.Errorf("ShouldNotify(%d, %d) = %v, want %v", tt.final, tt.threshold, got, tt.expected)
			}
		})
	}
}

func TestLead_NotifyDecisionMatchesStored(t *testing.T) {
	for final := MinScore; final <= MaxScore; final++ {
		lead := &Lead{FinalScore: final, ShouldNotify: ShouldNotify(final, 7)}
		for i := 0; i < 3; i++ {
			if got := lead.NotifyDecision(7); got != lead.ShouldNotify {
				t.Fatalf("NotifyDecision() for score %d = %v, stored %v", final, got, lead.ShouldNotify)
			}
		}
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-7, 0},
		{0, 0},
		{5, 5},
		{10, 10},
		{14, 10},
	}
	for _, tt := range tests {
		if got := ClampScore(tt.in); got != tt.want {
			t.Errorf("ClampScore(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLeadStatusConstants(t *testing.T) {
	if LeadStatusNew != "new" {
		t.Errorf("LeadStatusNew = %q, want %q", LeadStatusNew, "new")
	}
	if LeadStatusContacted != "contacted" {
		t.Errorf("LeadStatusContacted = %q, want %q", LeadStatusContacted, "contacted")
	}
	if LeadStatusIgnored != "ignored" {
		t.Errorf("LeadStatusIgnored = %q, want %q", LeadStatusIgnored, "ignored")
	}
}

func TestCandidate_Content(t *testing.T) {
	tests := []struct {
		name  string
		c     Candidate
		want  string
	}{
		{"title only", Candidate{Title: "Need dev"}, "Need dev"},
		{"text only", Candidate{Text: "body"}, "body"},
		{"both", Candidate{Title: "Need dev", Text: "body"}, "Need dev\nbody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Content(); got != tt.want {
				t.Errorf("Content() = %q, want %q", got, tt.want)
			}
		})
	}
}
