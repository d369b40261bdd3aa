package poller

import (
	"context"
	"testing"
	"time"

	"github.com/playbookTV/leadscan-sub000/internal/dedup"
	"github.com/playbookTV/leadscan-sub000/internal/keywords"
	"github.com/playbookTV/leadscan-sub000/internal/models"
	"github.com/playbookTV/leadscan-sub000/internal/retry"
	"github.com/playbookTV/leadscan-sub000/internal/scoring"
	"github.com/playbookTV/leadscan-sub000/internal/sources"
	"github.com/playbookTV/leadscan-sub000/internal/testutil"
)

func TestRunCycle_Postgres(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	k := testutil.CreateTestKeyword(t, database, "react developer", "frontend")
	testutil.CreateTestLead(t, database, models.PlatformHackerNews, "old-1", "alice", hotText)

	src := staticSource(models.PlatformHackerNews,
		candidate(models.PlatformHackerNews, "new-1", "bob", hotText),
		candidate(models.PlatformHackerNews, "new-2", "alice", hotText+" please"),
		candidate(models.PlatformHackerNews, "old-1", "alice", hotText),
	)

	n := &fakeNotifier{}
	o := New(database, []sources.Source{src},
		keywords.NewSelector(keywords.Options{MaxPerCycle: 10}, nil),
		dedup.New(database, dedup.Options{}),
		scoring.NewScorer(nil, scoring.Options{AIThreshold: 5, NotifyThreshold: 7}),
		n,
		Options{MinQuota: 5, PersistRetry: retry.None},
	)

	result, err := o.RunCycle(ctx)
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if result.LeadsCreated != 1 || result.Duplicates != 2 {
		t.Errorf("leads = %d, duplicates = %d, want 1 and 2 (errors %v)", result.LeadsCreated, result.Duplicates, result.Errors)
	}
	if len(n.leads) != 1 {
		t.Errorf("notifications = %d, want 1", len(n.leads))
	}

	stored, err := database.GetLeadByPlatformPostID(ctx, models.PlatformHackerNews, "new-1")
	if err != nil {
		t.Fatalf("GetLeadByPlatformPostID() error = %v", err)
	}
	if len(stored.KeywordIDs) != 1 || stored.KeywordIDs[0] != k.ID {
		t.Errorf("KeywordIDs = %v, want [%s]", stored.KeywordIDs, k.ID)
	}
	if !stored.ShouldNotify || stored.NotifyDecision(7) != stored.ShouldNotify {
		t.Error("stored notify decision does not match recomputed gate")
	}

	updated, err := database.GetKeywordByID(ctx, k.ID)
	if err != nil {
		t.Fatalf("GetKeywordByID() error = %v", err)
	}
	if updated.TimesUsed != 1 || updated.LeadsFound != 1 || updated.HighScoreLeads != 1 {
		t.Errorf("keyword counters = used %d, found %d, high %d, want 1/1/1",
			updated.TimesUsed, updated.LeadsFound, updated.HighScoreLeads)
	}
	if updated.LastUsedAt == nil || time.Since(*updated.LastUsedAt) > time.Minute {
		t.Errorf("LastUsedAt = %v, want recent", updated.LastUsedAt)
	}

	runs, err := database.GetRecentPollRuns(ctx, 5)
	if err != nil {
		t.Fatalf("GetRecentPollRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].ID != result.ID || runs[0].LeadsCreated != 1 {
		t.Errorf("poll runs = %+v, want the finished cycle", runs)
	}

	leads, err := database.ListLeads(ctx, 7, 10)
	if err != nil {
		t.Fatalf("ListLeads() error = %v", err)
	}
	if len(leads) != 1 || leads[0].PostID != "new-1" {
		t.Errorf("ListLeads(min 7) = %d leads, want only new-1", len(leads))
	}
}
