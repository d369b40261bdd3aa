// Package sources adapts content platforms into candidate posts.
package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/playbookTV/leadscan-sub000/internal/models"
	"github.com/playbookTV/leadscan-sub000/internal/retry"
)

var (
	// ErrAuth means the platform rejected our credentials.
	ErrAuth = errors.New("source authentication failed")
	// ErrRateLimited matches any RateLimitError.
	ErrRateLimited = errors.New("source rate limited")
)

// FetchResult is one query's candidates plus the remaining call quota, if
// the platform reports one.
type FetchResult struct {
	Candidates     []models.Candidate
	QuotaRemaining *int
}

// Source fetches candidates for a keyword batch posted at or after since.
type Source interface {
	Platform() string
	Fetch(ctx context.Context, batch models.Batch, since time.Time) (*FetchResult, error)
}

// RateLimitError reports an exhausted quota with a reset hint.
type RateLimitError struct {
	Platform string
	ResetAt  time.Time
}

func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return fmt.Sprintf("%s: rate limited", e.Platform)
	}
	return fmt.Sprintf("%s: rate limited until %s", e.Platform, e.ResetAt.Format(time.RFC3339))
}

// Is lets errors.Is(err, ErrRateLimited) match.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// TransientError wraps a failure worth retrying (timeouts, 5xx, resets).
type TransientError struct {
	Platform string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient: %v", e.Platform, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// StopsPlatform reports whether err means no further calls should be made to
// the platform this cycle.
func StopsPlatform(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrAuth)
}

// DefaultRetry retries transient source failures only.
var DefaultRetry = retry.Policy{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    5 * time.Second,
	Retryable:   IsTransient,
}

// classifyStatus maps an HTTP response status into the error taxonomy.
func classifyStatus(platform string, resp *http.Response, resetAt time.Time) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		if resetAt.IsZero() {
			resetAt = retryAfter(resp)
		}
		return &RateLimitError{Platform: platform, ResetAt: resetAt}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w (HTTP %d)", platform, ErrAuth, resp.StatusCode)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusRequestTimeout:
		return &TransientError{Platform: platform, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	default:
		return fmt.Errorf("%s: unexpected HTTP %d", platform, resp.StatusCode)
	}
}

func retryAfter(resp *http.Response) time.Time {
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
		return time.Now().Add(time.Duration(secs) * time.Second)
	}
	return time.Time{}
}

// doRequest performs req, marking network failures as transient.
func doRequest(client *http.Client, platform string, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransientError{Platform: platform, Err: err}
	}
	return resp, nil
}
