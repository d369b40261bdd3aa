// Package poller runs lead discovery cycles across every configured source.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/playbookTV/leadscan-sub000/internal/db"
	"github.com/playbookTV/leadscan-sub000/internal/dedup"
	"github.com/playbookTV/leadscan-sub000/internal/keywords"
	"github.com/playbookTV/leadscan-sub000/internal/metrics"
	"github.com/playbookTV/leadscan-sub000/internal/models"
	"github.com/playbookTV/leadscan-sub000/internal/notify"
	"github.com/playbookTV/leadscan-sub000/internal/retry"
	"github.com/playbookTV/leadscan-sub000/internal/scoring"
	"github.com/playbookTV/leadscan-sub000/internal/sources"
)

// ErrCycleRunning is returned when a cycle is triggered while one is in flight.
var ErrCycleRunning = errors.New("poll cycle already running")

// flushTimeout bounds the best-effort writes made after the cycle context ends.
const flushTimeout = 10 * time.Second

// Store is the persistence surface the orchestrator needs.
type Store interface {
	dedup.Store
	GetActiveKeywords(ctx context.Context) ([]models.Keyword, error)
	SeedDefaultKeywords(ctx context.Context, defaults []models.Keyword) (int, error)
	InsertLead(ctx context.Context, lead *models.Lead) error
	UpdateKeywordCounters(ctx context.Context, id uuid.UUID, delta models.KeywordDelta) error
	InsertPollRun(ctx context.Context, r *models.CycleResult) error
}

// Options tune a cycle.
type Options struct {
	Lookback        time.Duration // how far back each cycle searches
	BatchSize       int           // keywords merged into one query
	MinQuota        int           // stop a platform when remaining quota drops below this
	DefaultKeywords []models.Keyword
	PersistRetry    retry.Policy
}

// Orchestrator coordinates selection, fetching, dedup, scoring, persistence
// and notification. At most one cycle runs at a time.
type Orchestrator struct {
	store    Store
	sources  []sources.Source
	selector *keywords.Selector
	dedup    *dedup.Deduplicator
	scorer   *scoring.Scorer
	notifier notify.Notifier
	opts     Options
	now      func() time.Time

	mu       sync.Mutex
	running  bool
	last     *models.CycleResult
	lifetime models.LifetimeStats
}

// New creates an orchestrator. A nil notifier discards notifications.
func New(store Store, srcs []sources.Source, selector *keywords.Selector, deduper *dedup.Deduplicator,
	scorer *scoring.Scorer, notifier notify.Notifier, opts Options) *Orchestrator {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if opts.Lookback <= 0 {
		opts.Lookback = time.Hour
	}
	if opts.PersistRetry.MaxAttempts == 0 {
		opts.PersistRetry = retry.Default
	}
	opts.PersistRetry = opts.PersistRetry.WithRetryable(func(err error) bool {
		return !errors.Is(err, db.ErrDuplicateLead)
	})

	return &Orchestrator{
		store:    store,
		sources:  srcs,
		selector: selector,
		dedup:    deduper,
		scorer:   scorer,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
		lifetime: models.LifetimeStats{AICost: decimal.Zero},
	}
}

// Stats returns the last cycle and lifetime totals.
func (o *Orchestrator) Stats() models.Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return models.Stats{
		Running:   o.running,
		LastCycle: o.last,
		Lifetime:  o.lifetime,
	}
}

// Running reports whether a cycle is in flight.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// RunCycle executes one discovery cycle. A call made while another cycle is
// running returns ErrCycleRunning without touching any source. Per-platform
// and per-candidate failures are collected in the result.
func (o *Orchestrator) RunCycle(ctx context.Context) (*models.CycleResult, error) {
	o.mu.Lock()
	if o.running {
		o.lifetime.Skipped++
		o.mu.Unlock()
		metrics.RecordSkipped()
		slog.Info("poll cycle already running, skipping trigger")
		return nil, ErrCycleRunning
	}
	o.running = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	result := models.NewCycleResult(o.now())
	slog.Info("poll cycle started", "cycle_id", result.ID, "platforms", len(o.sources))

	all, err := o.loadKeywords(ctx)
	if err != nil {
		slog.Error("poll cycle aborted: failed to load keywords", "cycle_id", result.ID, "error", err)
		result.Aborted = true
		result.AddError(models.CycleError{Stage: models.StageKeywords, Message: err.Error()})
		o.finish(ctx, result)
		return result, nil
	}

	since := result.StartedAt.Add(-o.opts.Lookback)
	deltas := make(map[uuid.UUID]*models.KeywordDelta)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, src := range o.sources {
		g.Go(func() error {
			pr := o.pollPlatform(ctx, src, all, since)

			mu.Lock()
			defer mu.Unlock()
			result.Merge(pr.stats, pr.errors, pr.aiCost)
			for id, d := range pr.deltas {
				if cur, ok := deltas[id]; ok {
					cur.Add(*d)
				} else {
					deltas[id] = d
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		result.Aborted = true
		result.AddError(models.CycleError{Stage: models.StageFetch, Message: fmt.Sprintf("cycle cancelled: %v", ctx.Err())})
	}

	o.flushCounters(ctx, deltas, result)
	o.finish(ctx, result)
	return result, nil
}

// loadKeywords returns the enabled keywords, seeding defaults into an empty store.
func (o *Orchestrator) loadKeywords(ctx context.Context) ([]models.Keyword, error) {
	all, err := o.store.GetActiveKeywords(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > 0 || len(o.opts.DefaultKeywords) == 0 {
		return all, nil
	}

	n, err := o.store.SeedDefaultKeywords(ctx, o.opts.DefaultKeywords)
	if err != nil {
		return nil, fmt.Errorf("seed default keywords: %w", err)
	}
	slog.Info("seeded default keywords", "count", n)
	return o.store.GetActiveKeywords(ctx)
}

// flushCounters applies keyword counter deltas. Runs on a fresh context so a
// cancelled cycle still records the terms it queried.
func (o *Orchestrator) flushCounters(ctx context.Context, deltas map[uuid.UUID]*models.KeywordDelta, result *models.CycleResult) {
	if len(deltas) == 0 {
		return
	}
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()

	for id, d := range deltas {
		if d.IsZero() {
			continue
		}
		if err := o.store.UpdateKeywordCounters(fctx, id, *d); err != nil {
			slog.Warn("failed to update keyword counters", "keyword_id", id, "error", err)
			result.AddError(models.CycleError{Stage: models.StageCounters, Keyword: id.String(), Message: err.Error()})
		}
	}
}

// finish stamps, records and audits a completed cycle.
func (o *Orchestrator) finish(ctx context.Context, result *models.CycleResult) {
	result.FinishedAt = o.now()

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	if err := o.store.InsertPollRun(pctx, result); err != nil {
		slog.Warn("failed to record poll run", "cycle_id", result.ID, "error", err)
	}

	metrics.RecordCycle(result)

	o.mu.Lock()
	o.last = result
	o.lifetime.Add(result)
	o.mu.Unlock()

	slog.Info("poll cycle finished",
		"cycle_id", result.ID,
		"duration", result.Duration(),
		"candidates", result.Candidates,
		"leads", result.LeadsCreated,
		"duplicates", result.Duplicates,
		"skipped", result.Skipped,
		"notifications", result.Notifications,
		"ai_cost", result.AICost.StringFixed(4),
		"errors", len(result.Errors),
		"aborted", result.Aborted,
	)
}
