package sources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"

	"github.com/playbookTV/leadscan-sub000/internal/models"
	"github.com/playbookTV/leadscan-sub000/internal/retry"
)

var fastRetry = retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, Retryable: IsTransient}

func newTestReddit(url string) *RedditClient {
	c := NewRedditClient(url, "leadscan-test/1.0", 5*time.Second)
	c.retry = fastRetry
	return c
}

func TestRedditFetch(t *testing.T) {
	now := time.Now().UTC()
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"children": []map[string]interface{}{
				{"data": map[string]interface{}{
					"name":         "t3_new",
					"author":       "founder42",
					"title":        "Need a React developer",
					"selftext":     "Budget $5000, DM me",
					"permalink":    "/r/forhire/comments/new/",
					"created_utc":  float64(now.Add(-10 * time.Minute).Unix()),
					"score":        12,
					"num_comments": 3,
					"subreddit":    "forhire",
				}},
				{"data": map[string]interface{}{
					"name":        "t3_old",
					"author":      "someone",
					"title":       "Old post",
					"created_utc": float64(now.Add(-48 * time.Hour).Unix()),
				}},
				{"data": map[string]interface{}{
					"name":        "t3_deleted",
					"author":      "[deleted]",
					"title":       "Removed",
					"created_utc": float64(now.Unix()),
				}},
			},
		},
	}

	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Ratelimit-Remaining", "42.0")
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	kid := uuid.New()
	batch := models.Batch{Query: "react developer", Keywords: []models.Keyword{{ID: kid, Text: "react developer"}}}
	res, err := newTestReddit(srv.URL).Fetch(context.Background(), batch, now.Add(-time.Hour))

	assert.Equal(t, nil, err)
	assert.Equal(t, "react developer", gotQuery)
	assert.Equal(t, "leadscan-test/1.0", gotUA)
	assert.Equal(t, 2, len(res.Candidates))
	assert.NotEqual(t, nil, res.QuotaRemaining)
	assert.Equal(t, 42, *res.QuotaRemaining)

	c := res.Candidates[0]
	assert.Equal(t, models.PlatformReddit, c.Platform)
	assert.Equal(t, "t3_new", c.PostID)
	assert.Equal(t, "founder42", c.Author)
	assert.Equal(t, "Budget $5000, DM me", c.Text)
	assert.Equal(t, "https://www.reddit.com/r/forhire/comments/new/", c.URL)
	assert.Equal(t, "forhire", c.Metadata.Community)
	assert.Equal(t, []uuid.UUID{kid}, c.KeywordIDs)

	assert.Equal(t, "", res.Candidates[1].Author)
}

func TestRedditFetchRateLimited(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("X-Ratelimit-Reset", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestReddit(srv.URL).Fetch(context.Background(), models.Batch{Query: "x"}, time.Now())

	assert.Equal(t, true, errors.Is(err, ErrRateLimited))
	assert.Equal(t, true, StopsPlatform(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var rle *RateLimitError
	assert.Equal(t, true, errors.As(err, &rle))
	assert.Equal(t, true, rle.ResetAt.After(time.Now()))
}

func TestRedditFetchAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestReddit(srv.URL).Fetch(context.Background(), models.Batch{Query: "x"}, time.Now())

	assert.Equal(t, true, errors.Is(err, ErrAuth))
	assert.Equal(t, true, StopsPlatform(err))
}

func TestRedditFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"children":[]}}`))
	}))
	defer srv.Close()

	res, err := newTestReddit(srv.URL).Fetch(context.Background(), models.Batch{Query: "x"}, time.Now())

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(res.Candidates))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRedditFetchPersistentServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestReddit(srv.URL).Fetch(context.Background(), models.Batch{Query: "x"}, time.Now())

	assert.Equal(t, true, IsTransient(err))
	assert.Equal(t, false, StopsPlatform(err))
}
