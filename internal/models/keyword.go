package models

import (
	"time"

	"github.com/google/uuid"
)

// Keyword is an operator-configured search term with platform scope and
// rolling performance counters.
type Keyword struct {
	ID             uuid.UUID  `json:"id"`
	Text           string     `json:"text"`
	Platform       *string    `json:"platform"` // nil applies to every platform
	Enabled        bool       `json:"enabled"`
	Category       string     `json:"category"`
	TimesUsed      int64      `json:"times_used"`
	LeadsFound     int64      `json:"leads_found"`
	HighScoreLeads int64      `json:"high_score_leads"`
	ConversionRate float64    `json:"conversion_rate"`
	AvgScore       float64    `json:"avg_score"`
	LastUsedAt     *time.Time `json:"last_used_at"`
	LastLeadAt     *time.Time `json:"last_lead_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AppliesTo reports whether the keyword should be queried on the platform.
func (k *Keyword) AppliesTo(platform string) bool {
	return k.Platform == nil || *k.Platform == "" || *k.Platform == platform
}

// IsUnused returns true if the keyword has never been queried.
func (k *Keyword) IsUnused() bool {
	return k.TimesUsed == 0
}

// KeywordDelta is the counter change applied to a keyword after a cycle.
type KeywordDelta struct {
	TimesUsed      int64
	LeadsFound     int64
	HighScoreLeads int64
	ScoreSum       int64
	LastLeadAt     *time.Time
}

// Add merges another delta into d.
func (d *KeywordDelta) Add(o KeywordDelta) {
	d.TimesUsed += o.TimesUsed
	d.LeadsFound += o.LeadsFound
	d.HighScoreLeads += o.HighScoreLeads
	d.ScoreSum += o.ScoreSum
	if o.LastLeadAt != nil && (d.LastLeadAt == nil || o.LastLeadAt.After(*d.LastLeadAt)) {
		t := *o.LastLeadAt
		d.LastLeadAt = &t
	}
}

// IsZero returns true if applying the delta would change nothing.
func (d KeywordDelta) IsZero() bool {
	return d.TimesUsed == 0 && d.LeadsFound == 0 && d.HighScoreLeads == 0 && d.ScoreSum == 0 && d.LastLeadAt == nil
}

// Batch is one source query covering one or more keywords of a category.
type Batch struct {
	Category string    `json:"category"`
	Keywords []Keyword `json:"keywords"`
	Query    string    `json:"query"`
	Batched  bool      `json:"batched"`
}
