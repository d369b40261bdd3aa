package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

func TestSeedDefaultKeywords(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	reddit := models.PlatformReddit
	defaults := []models.Keyword{
		{Text: "need a developer", Category: "hiring"},
		{Text: "looking for freelancer", Platform: &reddit, Category: "hiring"},
	}

	n, err := db.SeedDefaultKeywords(ctx, defaults)
	if err != nil {
		t.Fatalf("SeedDefaultKeywords() error = %v", err)
	}
	if n != 2 {
		t.Errorf("SeedDefaultKeywords() inserted %d, want 2", n)
	}

	// Seeding twice is a no-op
	n, err = db.SeedDefaultKeywords(ctx, defaults)
	if err != nil {
		t.Fatalf("SeedDefaultKeywords() second call error = %v", err)
	}
	if n != 0 {
		t.Errorf("SeedDefaultKeywords() second call inserted %d, want 0", n)
	}

	active, err := db.GetActiveKeywords(ctx)
	if err != nil {
		t.Fatalf("GetActiveKeywords() error = %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("GetActiveKeywords() returned %d, want 2", len(active))
	}
}

func TestUpdateKeywordCounters(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	k := seedKeyword(t, db, "react developer")

	found := time.Now().UTC().Truncate(time.Second)
	delta := models.KeywordDelta{TimesUsed: 2, LeadsFound: 1, HighScoreLeads: 1, ScoreSum: 8, LastLeadAt: &found}
	if err := db.UpdateKeywordCounters(ctx, k.ID, delta); err != nil {
		t.Fatalf("UpdateKeywordCounters() error = %v", err)
	}

	got, err := db.GetKeywordByID(ctx, k.ID)
	if err != nil {
		t.Fatalf("GetKeywordByID() error = %v", err)
	}
	if got.TimesUsed != 2 || got.LeadsFound != 1 || got.HighScoreLeads != 1 {
		t.Errorf("counters = %d/%d/%d, want 2/1/1", got.TimesUsed, got.LeadsFound, got.HighScoreLeads)
	}
	if got.ConversionRate != 0.5 {
		t.Errorf("ConversionRate = %v, want 0.5", got.ConversionRate)
	}
	if got.AvgScore != 8 {
		t.Errorf("AvgScore = %v, want 8", got.AvgScore)
	}
	if got.LastUsedAt == nil || got.LastLeadAt == nil {
		t.Error("expected LastUsedAt and LastLeadAt to be set")
	}
}

func TestUpdateKeywordCounters_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	err := db.UpdateKeywordCounters(context.Background(), uuid.New(), models.KeywordDelta{TimesUsed: 1})
	if !errors.Is(err, ErrKeywordNotFound) {
		t.Errorf("UpdateKeywordCounters() error = %v, want ErrKeywordNotFound", err)
	}
}

// seedKeyword seeds one keyword for all platforms and returns the stored row.
func seedKeyword(t *testing.T, db *DB, text string) *models.Keyword {
	t.Helper()

	ctx := context.Background()
	if _, err := db.SeedDefaultKeywords(ctx, []models.Keyword{{Text: text}}); err != nil {
		t.Fatalf("SeedDefaultKeywords() error = %v", err)
	}
	active, err := db.GetActiveKeywords(ctx)
	if err != nil {
		t.Fatalf("GetActiveKeywords() error = %v", err)
	}
	for i := range active {
		if active[i].Text == text && active[i].Platform == nil {
			return &active[i]
		}
	}
	t.Fatalf("seeded keyword %q not found", text)
	return nil
}
