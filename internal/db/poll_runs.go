package db

import (
	"context"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// InsertPollRun stores a finished cycle as an audit record.
func (d *DB) InsertPollRun(ctx context.Context, r *models.CycleResult) error {
	errs := r.Errors
	if errs == nil {
		errs = []models.CycleError{}
	}
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO poll_runs (id, started_at, finished_at, candidates, leads_created, duplicates,
			skipped, notifications, ai_cost, aborted, platforms, errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`,
		r.ID,
		r.StartedAt,
		r.FinishedAt,
		r.Candidates,
		r.LeadsCreated,
		r.Duplicates,
		r.Skipped,
		r.Notifications,
		r.AICost,
		r.Aborted,
		r.Platforms,
		errs,
	)
	return err
}

// GetRecentPollRuns returns the latest audit records, newest first.
func (d *DB) GetRecentPollRuns(ctx context.Context, limit int) ([]models.CycleResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.Pool.Query(ctx, `
		SELECT id, started_at, finished_at, candidates, leads_created, duplicates, skipped,
			notifications, ai_cost, aborted, platforms, errors
		FROM poll_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.CycleResult
	for rows.Next() {
		var r models.CycleResult
		if err := rows.Scan(
			&r.ID,
			&r.StartedAt,
			&r.FinishedAt,
			&r.Candidates,
			&r.LeadsCreated,
			&r.Duplicates,
			&r.Skipped,
			&r.Notifications,
			&r.AICost,
			&r.Aborted,
			&r.Platforms,
			&r.Errors,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
