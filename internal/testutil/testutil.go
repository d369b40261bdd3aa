// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playbookTV/leadscan-sub000/internal/db"
	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// TestDB connects to TEST_DATABASE_URL, runs migrations and returns a cleanup
// function. The test is skipped when no database is configured.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupTestData(ctx, database.Pool)

	cleanup := func() {
		cleanupTestData(ctx, database.Pool)
		database.Close()
	}

	return database, cleanup
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	// Delete in order to respect foreign keys
	pool.Exec(ctx, "DELETE FROM lead_keywords")
	pool.Exec(ctx, "DELETE FROM leads")
	pool.Exec(ctx, "DELETE FROM keywords")
	pool.Exec(ctx, "DELETE FROM poll_runs")
}

// CreateTestKeyword inserts an enabled keyword for all platforms and returns it.
func CreateTestKeyword(t *testing.T, database *db.DB, text, category string) models.Keyword {
	t.Helper()

	ctx := context.Background()
	seed := models.Keyword{Text: text, Category: category, Enabled: true}
	if _, err := database.SeedDefaultKeywords(ctx, []models.Keyword{seed}); err != nil {
		t.Fatalf("failed to create test keyword: %v", err)
	}

	active, err := database.GetActiveKeywords(ctx)
	if err != nil {
		t.Fatalf("failed to load test keyword: %v", err)
	}
	for _, k := range active {
		if k.Text == text && k.Platform == nil {
			return k
		}
	}
	t.Fatalf("test keyword %q not found after insert", text)
	return models.Keyword{}
}

// CreateTestLead inserts a lead authored by author and returns its ID.
func CreateTestLead(t *testing.T, database *db.DB, platform, postID, author, text string) uuid.UUID {
	t.Helper()

	lead := &models.Lead{
		Platform:   platform,
		PostID:     postID,
		Author:     author,
		Text:       text,
		URL:        "https://example.com/" + postID,
		PostedAt:   time.Now().UTC(),
		QuickScore: 1,
		FinalScore: 1,
		QuickBreakdown: models.QuickScoreBreakdown{
			Signals: []models.ScoreSignal{},
			Raw:     1,
			Score:   1,
		},
	}
	if err := database.InsertLead(context.Background(), lead); err != nil {
		t.Fatalf("failed to create test lead: %v", err)
	}
	return lead.ID
}
