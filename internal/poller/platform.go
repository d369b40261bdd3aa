package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/playbookTV/leadscan-sub000/internal/db"
	"github.com/playbookTV/leadscan-sub000/internal/keywords"
	"github.com/playbookTV/leadscan-sub000/internal/models"
	"github.com/playbookTV/leadscan-sub000/internal/sources"
	"github.com/playbookTV/leadscan-sub000/internal/validation"
)

// platformResult is one platform's share of a cycle. It is owned by a single
// goroutine until merged.
type platformResult struct {
	stats  *models.PlatformStats
	errors []models.CycleError
	deltas map[uuid.UUID]*models.KeywordDelta
	aiCost decimal.Decimal
}

func newPlatformResult(platform string) *platformResult {
	return &platformResult{
		stats:  &models.PlatformStats{Platform: platform},
		deltas: make(map[uuid.UUID]*models.KeywordDelta),
		aiCost: decimal.Zero,
	}
}

func (pr *platformResult) addError(stage, keyword, postID string, err error) {
	pr.errors = append(pr.errors, models.CycleError{
		Platform: pr.stats.Platform,
		Keyword:  keyword,
		PostID:   postID,
		Stage:    stage,
		Message:  err.Error(),
	})
}

func (pr *platformResult) delta(id uuid.UUID) *models.KeywordDelta {
	d, ok := pr.deltas[id]
	if !ok {
		d = &models.KeywordDelta{}
		pr.deltas[id] = d
	}
	return d
}

// pollPlatform queries one source batch by batch. A panic fails the platform
// without affecting the others.
func (o *Orchestrator) pollPlatform(ctx context.Context, src sources.Source, all []models.Keyword, since time.Time) (pr *platformResult) {
	platform := src.Platform()
	pr = newPlatformResult(platform)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("platform poll panicked", "platform", platform, "panic", r)
			pr.stats.Failed = true
			pr.addError(models.StageFetch, "", "", fmt.Errorf("panic: %v", r))
		}
	}()

	selected := o.selector.Select(ctx, all, platform)
	pr.stats.Keywords = len(selected)
	if len(selected) == 0 {
		slog.Debug("no keywords for platform", "platform", platform)
		return pr
	}

	failures := 0
	for _, batch := range keywords.BuildBatches(selected, o.opts.BatchSize) {
		if ctx.Err() != nil {
			pr.stats.StoppedEarly = true
			break
		}

		res, err := src.Fetch(ctx, batch, since)
		pr.stats.Calls++
		for _, k := range batch.Keywords {
			if k.ID != uuid.Nil {
				pr.delta(k.ID).TimesUsed++
			}
		}

		if err != nil {
			failures++
			pr.addError(models.StageFetch, batch.Query, "", err)
			if sources.StopsPlatform(err) {
				slog.Warn("platform stopped for this cycle", "platform", platform, "keyword", batch.Query, "error", err)
				pr.stats.StoppedEarly = true
				break
			}
			slog.Warn("source fetch failed", "platform", platform, "keyword", batch.Query, "error", err)
			continue
		}

		for i := range res.Candidates {
			if ctx.Err() != nil {
				break
			}
			o.processCandidate(ctx, &res.Candidates[i], batch, pr)
		}

		if res.QuotaRemaining != nil && *res.QuotaRemaining < o.opts.MinQuota {
			slog.Warn("source quota low, skipping remaining keywords", "platform", platform, "remaining", *res.QuotaRemaining)
			pr.stats.StoppedEarly = true
			break
		}
	}

	if pr.stats.Calls > 0 && failures == pr.stats.Calls {
		pr.stats.Failed = true
	}
	return pr
}

// processCandidate runs one candidate through validate, dedup, score, persist
// and notify.
func (o *Orchestrator) processCandidate(ctx context.Context, c *models.Candidate, batch models.Batch, pr *platformResult) {
	pr.stats.Candidates++
	if c.Keyword == "" {
		c.Keyword = batch.Query
	}
	log := slog.With("platform", c.Platform, "keyword", c.Keyword, "post_id", c.PostID)

	if err := validation.ValidateCandidate(*c); err != nil {
		pr.stats.Skipped++
		pr.addError(models.StageValidate, c.Keyword, c.PostID, err)
		log.Debug("candidate skipped", "error", err)
		return
	}

	match, err := o.dedup.Check(ctx, c)
	if err != nil {
		pr.addError(models.StageDedup, c.Keyword, c.PostID, err)
		log.Warn("dedup lookup failed, treating candidate as new", "error", err)
	}
	if match != nil {
		pr.stats.Duplicates++
		log.Debug("duplicate candidate", "reason", match.Reason, "similarity", match.Similarity)
		return
	}

	scored := o.scorer.Score(ctx, c.Content())
	pr.aiCost = pr.aiCost.Add(scored.AICost())
	switch {
	case scored.BudgetExhausted():
		log.Debug("ai assessment skipped", "reason", "budget")
	case scored.AIError != nil:
		pr.addError(models.StageScore, c.Keyword, c.PostID, scored.AIError)
		log.Warn("ai assessment failed, using quick score", "error", scored.AIError)
	}

	matched := matchedKeywords(batch, c.Content())
	lead := newLead(c, matched, scored.Quick, scored.AI, scored.Final, scored.ShouldNotify)

	err = o.opts.PersistRetry.Do(ctx, func(ctx context.Context) error {
		return o.store.InsertLead(ctx, lead)
	})
	switch {
	case errors.Is(err, db.ErrDuplicateLead):
		pr.stats.Duplicates++
		log.Debug("lead already stored")
		return
	case err != nil:
		pr.addError(models.StagePersist, c.Keyword, c.PostID, err)
		log.Error("failed to store lead", "error", err)
		return
	}

	pr.stats.Leads++
	found := o.now()
	for _, k := range matched {
		if k.ID == uuid.Nil {
			continue
		}
		d := pr.delta(k.ID)
		d.LeadsFound++
		d.ScoreSum += int64(lead.FinalScore)
		if lead.FinalScore >= o.scorer.NotifyThreshold() {
			d.HighScoreLeads++
		}
		d.Add(models.KeywordDelta{LastLeadAt: &found})
	}
	log.Info("lead created", "final_score", lead.FinalScore, "quick_score", lead.QuickScore, "notify", lead.ShouldNotify)

	if !lead.ShouldNotify {
		return
	}
	if err := o.notifier.Notify(ctx, lead); err != nil {
		pr.addError(models.StageNotify, c.Keyword, c.PostID, err)
		log.Warn("lead notification failed", "error", err)
		return
	}
	pr.stats.Notifications++
}

// matchedKeywords returns the batch keywords whose text appears in content.
// When none appear literally, the whole batch is credited.
func matchedKeywords(batch models.Batch, content string) []models.Keyword {
	if len(batch.Keywords) <= 1 {
		return batch.Keywords
	}
	lower := strings.ToLower(content)
	var out []models.Keyword
	for _, k := range batch.Keywords {
		if strings.Contains(lower, strings.ToLower(k.Text)) {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return batch.Keywords
	}
	return out
}

func newLead(c *models.Candidate, matched []models.Keyword, quick models.QuickScoreBreakdown,
	analysis *models.AIAnalysis, final int, shouldNotify bool) *models.Lead {
	lead := &models.Lead{
		Platform:       c.Platform,
		PostID:         c.PostID,
		Author:         c.Author,
		Title:          c.Title,
		Text:           c.Text,
		URL:            c.URL,
		PostedAt:       c.PostedAt,
		QuickScore:     quick.Score,
		QuickBreakdown: quick,
		AIAnalysis:     analysis,
		FinalScore:     final,
		ShouldNotify:   shouldNotify,
		Status:         models.LeadStatusNew,
		Metadata:       c.Metadata,
	}
	if analysis != nil {
		score := analysis.Score
		lead.AIScore = &score
	}
	for _, k := range matched {
		lead.Keywords = append(lead.Keywords, k.Text)
		if k.ID != uuid.Nil {
			lead.KeywordIDs = append(lead.KeywordIDs, k.ID)
		}
	}
	return lead
}
