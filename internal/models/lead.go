package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadStatus is the operator-managed state of a lead.
type LeadStatus string

// Lead status values.
const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
	LeadStatusIgnored   LeadStatus = "ignored"
)

// Score bounds shared by quick and final scores.
const (
	MinScore = 0
	MaxScore = 10
)

// Lead is a persisted, scored candidate.
type Lead struct {
	ID             uuid.UUID           `json:"id"`
	Platform       string              `json:"platform"`
	PostID         string              `json:"post_id"`
	Author         string              `json:"author"`
	Title          string              `json:"title"`
	Text           string              `json:"text"`
	URL            string              `json:"url"`
	PostedAt       time.Time           `json:"posted_at"`
	KeywordIDs     []uuid.UUID         `json:"keyword_ids"`
	Keywords       []string            `json:"keywords"`
	QuickScore     int                 `json:"quick_score"`
	QuickBreakdown QuickScoreBreakdown `json:"quick_breakdown"`
	AIScore        *int                `json:"ai_score"`
	AIAnalysis     *AIAnalysis         `json:"ai_analysis"`
	FinalScore     int                 `json:"final_score"`
	ShouldNotify   bool                `json:"should_notify"`
	Status         LeadStatus          `json:"status"`
	Metadata       CandidateMetadata   `json:"metadata"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Content returns title and body joined, matching Candidate.Content.
func (l *Lead) Content() string {
	switch {
	case l.Title == "":
		return l.Text
	case l.Text == "":
		return l.Title
	default:
		return l.Title + "\n" + l.Text
	}
}

// NotifyDecision recomputes the notification gate from the stored final score.
func (l *Lead) NotifyDecision(threshold int) bool {
	return ShouldNotify(l.FinalScore, threshold)
}

// ShouldNotify is the notification gate.
func ShouldNotify(finalScore, threshold int) bool {
	return finalScore >= threshold
}

// ClampScore bounds a score to [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// ScoreSignal is one heuristic pattern family that fired.
type ScoreSignal struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// QuickScoreBreakdown retains which signals fired and the unclamped total.
type QuickScoreBreakdown struct {
	Signals []ScoreSignal `json:"signals"`
	Raw     int           `json:"raw"`
	Score   int           `json:"score"`
}

// Has returns true if a signal with the given name fired.
func (b QuickScoreBreakdown) Has(name string) bool {
	for _, s := range b.Signals {
		if s.Name == name {
			return true
		}
	}
	return false
}

// AIAnalysis is the qualitative assessment returned by an AI provider.
type AIAnalysis struct {
	Score        int             `json:"score"`
	Summary      string          `json:"summary"`
	ProjectType  string          `json:"project_type"`
	Budget       *string         `json:"budget,omitempty"`
	Timeline     *string         `json:"timeline,omitempty"`
	Technologies []string        `json:"technologies"`
	RedFlags     []string        `json:"red_flags"`
	Cost         decimal.Decimal `json:"cost"`
	Model        string          `json:"model"`
}
