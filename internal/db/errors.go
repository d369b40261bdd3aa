package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level database error sentinels.
var (
	// Keyword errors
	ErrKeywordNotFound = errors.New("keyword not found")

	// Lead errors
	ErrLeadNotFound  = errors.New("lead not found")
	ErrDuplicateLead = errors.New("lead already exists for platform post")
)

const pgUniqueViolation = "23505"

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
