package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// keywordColumns is the standard column list for keyword queries.
const keywordColumns = `id, text, platform, enabled, category, times_used, leads_found,
	high_score_leads, conversion_rate, avg_score, last_used_at, last_lead_at, created_at, updated_at`

func keywordDest(k *models.Keyword) []any {
	return []any{
		&k.ID,
		&k.Text,
		&k.Platform,
		&k.Enabled,
		&k.Category,
		&k.TimesUsed,
		&k.LeadsFound,
		&k.HighScoreLeads,
		&k.ConversionRate,
		&k.AvgScore,
		&k.LastUsedAt,
		&k.LastLeadAt,
		&k.CreatedAt,
		&k.UpdatedAt,
	}
}

// scanKeyword scans a row into a Keyword struct.
func scanKeyword(row pgx.Row) (*models.Keyword, error) {
	var k models.Keyword
	err := row.Scan(keywordDest(&k)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeywordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// scanKeywords scans multiple rows into a slice of Keywords.
func scanKeywords(rows pgx.Rows) ([]models.Keyword, error) {
	defer rows.Close()

	var keywords []models.Keyword
	for rows.Next() {
		var k models.Keyword
		if err := rows.Scan(keywordDest(&k)...); err != nil {
			return nil, err
		}
		keywords = append(keywords, k)
	}

	return keywords, rows.Err()
}

// GetActiveKeywords returns every enabled keyword in creation order.
func (d *DB) GetActiveKeywords(ctx context.Context) ([]models.Keyword, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+keywordColumns+`
		FROM keywords
		WHERE enabled = TRUE
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	return scanKeywords(rows)
}

// GetKeywordByID retrieves a keyword by its ID.
func (d *DB) GetKeywordByID(ctx context.Context, id uuid.UUID) (*models.Keyword, error) {
	return scanKeyword(d.Pool.QueryRow(ctx, `SELECT `+keywordColumns+` FROM keywords WHERE id = $1`, id))
}

// SeedDefaultKeywords inserts the given keywords, skipping any that already exist.
// Returns the number of rows inserted.
func (d *DB) SeedDefaultKeywords(ctx context.Context, defaults []models.Keyword) (int, error) {
	query := `
		INSERT INTO keywords (text, platform, enabled, category)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (lower(text), COALESCE(platform, '')) DO NOTHING
	`

	inserted := 0
	for _, k := range defaults {
		category := k.Category
		if category == "" {
			category = "general"
		}
		tag, err := d.Pool.Exec(ctx, query, k.Text, k.Platform, category)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed keyword %s: %w", k.Text, err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// UpdateKeywordCounters applies a cycle's counter delta to a keyword.
// Conversion rate is leads found per query, capped at 1.
func (d *DB) UpdateKeywordCounters(ctx context.Context, id uuid.UUID, delta models.KeywordDelta) error {
	tag, err := d.Pool.Exec(ctx, `
		UPDATE keywords SET
			times_used       = times_used + $2::bigint,
			leads_found      = leads_found + $3::bigint,
			high_score_leads = high_score_leads + $4::bigint,
			score_sum        = score_sum + $5::bigint,
			last_used_at     = CASE WHEN $2::bigint > 0 THEN NOW() ELSE last_used_at END,
			last_lead_at     = GREATEST(last_lead_at, $6::timestamptz),
			conversion_rate  = CASE WHEN times_used + $2::bigint > 0
				THEN LEAST(1.0, (leads_found + $3::bigint)::float8 / (times_used + $2::bigint))
				ELSE 0 END,
			avg_score        = CASE WHEN leads_found + $3::bigint > 0
				THEN (score_sum + $5::bigint)::float8 / (leads_found + $3::bigint)
				ELSE 0 END,
			updated_at       = NOW()
		WHERE id = $1
	`, id, delta.TimesUsed, delta.LeadsFound, delta.HighScoreLeads, delta.ScoreSum, delta.LastLeadAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKeywordNotFound
	}
	return nil
}
