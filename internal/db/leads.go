package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// leadColumns is the standard column list for lead queries.
const leadColumns = `id, platform, post_id, author, title, text, url, posted_at, keywords,
	ARRAY(SELECT lk.keyword_id FROM lead_keywords lk WHERE lk.lead_id = leads.id) AS keyword_ids,
	quick_score, quick_breakdown, ai_score, ai_analysis, final_score, should_notify, status,
	metadata, created_at, updated_at`

func leadDest(l *models.Lead) []any {
	return []any{
		&l.ID,
		&l.Platform,
		&l.PostID,
		&l.Author,
		&l.Title,
		&l.Text,
		&l.URL,
		&l.PostedAt,
		&l.Keywords,
		&l.KeywordIDs,
		&l.QuickScore,
		&l.QuickBreakdown,
		&l.AIScore,
		&l.AIAnalysis,
		&l.FinalScore,
		&l.ShouldNotify,
		&l.Status,
		&l.Metadata,
		&l.CreatedAt,
		&l.UpdatedAt,
	}
}

// scanLead scans a row into a Lead struct.
func scanLead(row pgx.Row) (*models.Lead, error) {
	var l models.Lead
	err := row.Scan(leadDest(&l)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// scanLeads scans multiple rows into a slice of Leads.
func scanLeads(rows pgx.Rows) ([]models.Lead, error) {
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		var l models.Lead
		if err := rows.Scan(leadDest(&l)...); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}

	return leads, rows.Err()
}

// GetLeadByPlatformPostID retrieves the lead for a source post.
func (d *DB) GetLeadByPlatformPostID(ctx context.Context, platform, postID string) (*models.Lead, error) {
	return scanLead(d.Pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE platform = $1 AND post_id = $2
	`, platform, postID))
}

// GetRecentLeadsByAuthor returns leads by an author created at or after since,
// newest first.
func (d *DB) GetRecentLeadsByAuthor(ctx context.Context, author string, since time.Time) ([]models.Lead, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE author = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT 100
	`, author, since)
	if err != nil {
		return nil, err
	}
	return scanLeads(rows)
}

// InsertLead persists a new lead with its keyword links.
// Returns ErrDuplicateLead if the platform post was already ingested.
func (d *DB) InsertLead(ctx context.Context, lead *models.Lead) error {
	status := lead.Status
	if status == "" {
		status = models.LeadStatusNew
	}
	keywords := lead.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO leads (platform, post_id, author, title, text, url, posted_at, keywords,
			quick_score, quick_breakdown, ai_score, ai_analysis, final_score, should_notify, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`,
		lead.Platform,
		lead.PostID,
		lead.Author,
		lead.Title,
		lead.Text,
		lead.URL,
		lead.PostedAt,
		keywords,
		lead.QuickScore,
		lead.QuickBreakdown,
		lead.AIScore,
		lead.AIAnalysis,
		lead.FinalScore,
		lead.ShouldNotify,
		status,
		lead.Metadata,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return ErrDuplicateLead
		}
		return err
	}

	for _, kid := range lead.KeywordIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO lead_keywords (lead_id, keyword_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, lead.ID, kid); err != nil {
			return fmt.Errorf("failed to link keyword %s: %w", kid, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit lead: %w", err)
	}

	lead.Status = status
	return nil
}

// ListLeads returns the most recent leads, optionally only those above a score.
func (d *DB) ListLeads(ctx context.Context, minScore, limit int) ([]models.Lead, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := d.Pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE final_score >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`, minScore, limit)
	if err != nil {
		return nil, err
	}
	return scanLeads(rows)
}
