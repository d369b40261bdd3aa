package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cycle error stages.
const (
	StageKeywords = "keywords"
	StageFetch    = "fetch"
	StageValidate = "validate"
	StageDedup    = "dedup"
	StageScore    = "score"
	StagePersist  = "persist"
	StageNotify   = "notify"
	StageCounters = "counters"
)

// CycleError is a non-fatal failure recorded during a cycle.
type CycleError struct {
	Platform string `json:"platform,omitempty"`
	Keyword  string `json:"keyword,omitempty"`
	PostID   string `json:"post_id,omitempty"`
	Stage    string `json:"stage"`
	Message  string `json:"message"`
}

func (e CycleError) Error() string {
	msg := e.Stage
	if e.Platform != "" {
		msg += " " + e.Platform
	}
	if e.Keyword != "" {
		msg += " [" + e.Keyword + "]"
	}
	if e.PostID != "" {
		msg += " " + e.PostID
	}
	return msg + ": " + e.Message
}

// PlatformStats is the per-platform breakdown of a cycle.
type PlatformStats struct {
	Platform      string `json:"platform"`
	Keywords      int    `json:"keywords"`
	Calls         int    `json:"calls"`
	Candidates    int    `json:"candidates"`
	Leads         int    `json:"leads"`
	Duplicates    int    `json:"duplicates"`
	Skipped       int    `json:"skipped"`
	Notifications int    `json:"notifications"`
	StoppedEarly  bool   `json:"stopped_early"`
	Failed        bool   `json:"failed"`
}

// CycleResult aggregates the outcome of one orchestrator run.
type CycleResult struct {
	ID            uuid.UUID                 `json:"id"`
	StartedAt     time.Time                 `json:"started_at"`
	FinishedAt    time.Time                 `json:"finished_at"`
	Candidates    int                       `json:"candidates"`
	LeadsCreated  int                       `json:"leads_created"`
	Duplicates    int                       `json:"duplicates"`
	Skipped       int                       `json:"skipped"`
	Notifications int                       `json:"notifications"`
	AICost        decimal.Decimal           `json:"ai_cost"`
	Platforms     map[string]*PlatformStats `json:"platforms"`
	Errors        []CycleError              `json:"errors"`
	Aborted       bool                      `json:"aborted"`
}

// NewCycleResult creates an empty result stamped with a fresh ID.
func NewCycleResult(started time.Time) *CycleResult {
	return &CycleResult{
		ID:        uuid.New(),
		StartedAt: started,
		AICost:    decimal.Zero,
		Platforms: make(map[string]*PlatformStats),
	}
}

// Duration returns the wall-clock time the cycle ran.
func (r *CycleResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Platform returns the stats entry for a platform, creating it if needed.
func (r *CycleResult) Platform(name string) *PlatformStats {
	ps, ok := r.Platforms[name]
	if !ok {
		ps = &PlatformStats{Platform: name}
		r.Platforms[name] = ps
	}
	return ps
}

// AddError records a non-fatal error.
func (r *CycleResult) AddError(e CycleError) {
	r.Errors = append(r.Errors, e)
}

// Merge folds a platform's partial result into r.
func (r *CycleResult) Merge(ps *PlatformStats, errs []CycleError, aiCost decimal.Decimal) {
	r.Platforms[ps.Platform] = ps
	r.Candidates += ps.Candidates
	r.LeadsCreated += ps.Leads
	r.Duplicates += ps.Duplicates
	r.Skipped += ps.Skipped
	r.Notifications += ps.Notifications
	r.AICost = r.AICost.Add(aiCost)
	r.Errors = append(r.Errors, errs...)
}

// LifetimeStats accumulates totals across every cycle since process start.
type LifetimeStats struct {
	Cycles        int64           `json:"cycles"`
	Skipped       int64           `json:"skipped_triggers"`
	Aborted       int64           `json:"aborted"`
	Candidates    int64           `json:"candidates"`
	LeadsCreated  int64           `json:"leads_created"`
	Duplicates    int64           `json:"duplicates"`
	Notifications int64           `json:"notifications"`
	Errors        int64           `json:"errors"`
	AICost        decimal.Decimal `json:"ai_cost"`
}

// Add folds a finished cycle into the totals.
func (s *LifetimeStats) Add(r *CycleResult) {
	s.Cycles++
	if r.Aborted {
		s.Aborted++
	}
	s.Candidates += int64(r.Candidates)
	s.LeadsCreated += int64(r.LeadsCreated)
	s.Duplicates += int64(r.Duplicates)
	s.Notifications += int64(r.Notifications)
	s.Errors += int64(len(r.Errors))
	s.AICost = s.AICost.Add(r.AICost)
}

// Stats is the read-only snapshot exposed by the orchestrator.
type Stats struct {
	Running   bool          `json:"running"`
	LastCycle *CycleResult  `json:"last_cycle"`
	Lifetime  LifetimeStats `json:"lifetime"`
}
