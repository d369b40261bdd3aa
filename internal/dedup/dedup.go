// Package dedup detects candidates that repeat previously ingested leads.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playbookTV/leadscan-sub000/internal/db"
	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// Defaults for near-duplicate detection.
const (
	DefaultWindow    = 24 * time.Hour
	DefaultThreshold = 0.8
)

// Match reasons.
const (
	ReasonExact   = "exact"
	ReasonSimilar = "similar"
)

// Store is the lead lookup surface the deduplicator needs.
type Store interface {
	GetLeadByPlatformPostID(ctx context.Context, platform, postID string) (*models.Lead, error)
	GetRecentLeadsByAuthor(ctx context.Context, author string, since time.Time) ([]models.Lead, error)
}

// Options tune near-duplicate detection. Zero values use the defaults.
type Options struct {
	Window    time.Duration
	Threshold float64
}

// Match describes why a candidate was judged a duplicate.
type Match struct {
	Lead       *models.Lead
	Reason     string
	Similarity float64
}

// Deduplicator checks candidates against stored leads.
type Deduplicator struct {
	store     Store
	window    time.Duration
	threshold float64
	now       func() time.Time
}

// New creates a deduplicator.
func New(store Store, opts Options) *Deduplicator {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = DefaultThreshold
	}
	return &Deduplicator{
		store:     store,
		window:    opts.Window,
		threshold: opts.Threshold,
		now:       time.Now,
	}
}

// Check returns the match for a duplicate candidate, or nil.
// Lookup failures never block ingestion: the candidate is treated as new and
// the failure is returned for the caller to record.
func (d *Deduplicator) Check(ctx context.Context, c *models.Candidate) (*Match, error) {
	existing, err := d.store.GetLeadByPlatformPostID(ctx, c.Platform, c.PostID)
	switch {
	case err == nil && existing != nil:
		return &Match{Lead: existing, Reason: ReasonExact, Similarity: 1}, nil
	case err != nil && !errors.Is(err, db.ErrLeadNotFound):
		return nil, fmt.Errorf("exact lookup: %w", err)
	}

	if c.Author == "" {
		return nil, nil
	}

	recent, err := d.store.GetRecentLeadsByAuthor(ctx, c.Author, d.now().Add(-d.window))
	if err != nil {
		return nil, fmt.Errorf("author lookup: %w", err)
	}

	candidateTokens := tokenSet(c.Content())
	var best *Match
	for i := range recent {
		sim := jaccard(candidateTokens, tokenSet(recent[i].Content()))
		if sim >= d.threshold && (best == nil || sim > best.Similarity) {
			best = &Match{Lead: &recent[i], Reason: ReasonSimilar, Similarity: sim}
		}
	}
	return best, nil
}

// IsDuplicate returns the existing lead a candidate duplicates, or nil.
func (d *Deduplicator) IsDuplicate(ctx context.Context, c *models.Candidate) *models.Lead {
	m, _ := d.Check(ctx, c)
	if m == nil {
		return nil
	}
	return m.Lead
}

// Similarity is the word-level Jaccard similarity of two texts.
func Similarity(a, b string) float64 {
	return jaccard(tokenSet(a), tokenSet(b))
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
