// Package keywords chooses which search terms each platform queries per cycle.
package keywords

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// Priority weights.
const (
	conversionWeight = 40.0
	highScoreWeight  = 30.0
	recencyMax       = 20.0
	recencyDays      = 30.0
	volumeMax        = 10.0
	volumeScale      = 3.0
	coldStartBonus   = 5.0
)

// Options control selection policy.
type Options struct {
	MaxPerCycle int
	Prioritize  bool
	Rotate      bool
}

// Selector returns a bounded, ordered subset of keywords per platform.
// Rotation cursors are kept per platform and guarded by a mutex.
type Selector struct {
	opts  Options
	store CursorStore
	now   func() time.Time
	mu    sync.Mutex
}

// NewSelector creates a selector. A nil store keeps cursors in memory.
func NewSelector(opts Options, store CursorStore) *Selector {
	if store == nil {
		store = NewMemoryCursorStore()
	}
	return &Selector{
		opts:  opts,
		store: store,
		now:   time.Now,
	}
}

// Select filters keywords to those enabled for the platform and returns the
// subset to query this cycle. It never fails: internal errors fall back to
// the first MaxPerCycle eligible keywords.
func (s *Selector) Select(ctx context.Context, all []models.Keyword, platform string) (selected []models.Keyword) {
	eligible := Eligible(all, platform)
	if len(eligible) == 0 {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("keyword selection panicked, using first keywords", "platform", platform, "panic", r)
			selected = firstN(eligible, s.opts.MaxPerCycle)
		}
	}()

	out, err := s.selectFrom(ctx, eligible, platform)
	if err != nil {
		slog.Warn("keyword selection failed, using first keywords", "platform", platform, "error", err)
		return firstN(eligible, s.opts.MaxPerCycle)
	}
	return out
}

func (s *Selector) selectFrom(ctx context.Context, eligible []models.Keyword, platform string) ([]models.Keyword, error) {
	ordered := eligible
	if s.opts.Prioritize {
		ordered = Prioritize(eligible, s.now())
	}

	limit := s.opts.MaxPerCycle
	if limit <= 0 || limit >= len(ordered) {
		return ordered, nil
	}

	if !s.opts.Rotate {
		return ordered[:limit], nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cursor, err := s.store.Load(ctx, platform)
	if err != nil {
		return nil, fmt.Errorf("load cursor: %w", err)
	}

	window, next := Rotate(ordered, cursor, limit)
	if err := s.store.Save(ctx, platform, next); err != nil {
		// The window is still valid; the next cycle repeats it.
		slog.Warn("failed to save rotation cursor", "platform", platform, "error", err)
	}
	return window, nil
}

// Eligible returns enabled keywords that apply to the platform, in input order.
func Eligible(all []models.Keyword, platform string) []models.Keyword {
	var out []models.Keyword
	for _, k := range all {
		if k.Enabled && k.AppliesTo(platform) {
			out = append(out, k)
		}
	}
	return out
}

// Priority scores a keyword from its performance counters.
func Priority(k models.Keyword, now time.Time) float64 {
	score := k.ConversionRate * conversionWeight

	if k.LeadsFound > 0 {
		score += float64(k.HighScoreLeads) / float64(k.LeadsFound) * highScoreWeight
	}

	if k.LastLeadAt != nil {
		days := now.Sub(*k.LastLeadAt).Hours() / 24
		if days < 0 {
			days = 0
		}
		score += math.Max(0, recencyMax*(1-days/recencyDays))
	}

	score += math.Min(volumeMax, math.Log10(float64(k.LeadsFound)+1)*volumeScale)

	if k.IsUnused() {
		score += coldStartBonus
	}

	return score
}

// Prioritize returns a copy sorted by descending priority. Ties keep input order.
func Prioritize(keywords []models.Keyword, now time.Time) []models.Keyword {
	type scored struct {
		k models.Keyword
		p float64
	}
	tmp := make([]scored, len(keywords))
	for i, k := range keywords {
		tmp[i] = scored{k: k, p: Priority(k, now)}
	}
	slices.SortStableFunc(tmp, func(a, b scored) int {
		return cmp.Compare(b.p, a.p)
	})

	out := make([]models.Keyword, len(tmp))
	for i, s := range tmp {
		out[i] = s.k
	}
	return out
}

// Rotate takes a contiguous window of size limit starting at cursor, wrapping
// past the end, and returns it with the cursor for the next call. When limit
// covers the whole list the list and cursor come back unchanged.
func Rotate(list []models.Keyword, cursor, limit int) ([]models.Keyword, int) {
	n := len(list)
	if n == 0 || limit <= 0 || limit >= n {
		return list, cursor
	}

	start := cursor % n
	if start < 0 {
		start += n
	}

	window := make([]models.Keyword, 0, limit)
	for i := 0; i < limit; i++ {
		window = append(window, list[(start+i)%n])
	}
	return window, (start + limit) % n
}

func firstN(list []models.Keyword, n int) []models.Keyword {
	if n <= 0 || n >= len(list) {
		return list
	}
	return list[:n]
}
