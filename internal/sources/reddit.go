package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/playbookTV/leadscan-sub000/internal/models"
	"github.com/playbookTV/leadscan-sub000/internal/retry"
)

// RedditClient searches public Reddit posts.
type RedditClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	retry      retry.Policy
}

// NewRedditClient creates a Reddit adapter.
func NewRedditClient(baseURL, userAgent string, timeout time.Duration) *RedditClient {
	if baseURL == "" {
		baseURL = "https://www.reddit.com"
	}
	return &RedditClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		retry:      DefaultRetry,
	}
}

// Platform returns the platform identifier.
func (c *RedditClient) Platform() string {
	return models.PlatformReddit
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Name        string  `json:"name"`
	Author      string  `json:"author"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
}

// Fetch searches new posts matching the batch query.
func (c *RedditClient) Fetch(ctx context.Context, batch models.Batch, since time.Time) (*FetchResult, error) {
	params := url.Values{}
	params.Set("q", batch.Query)
	params.Set("sort", "new")
	params.Set("t", "day")
	params.Set("limit", "100")
	params.Set("type", "link")

	var result *FetchResult
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = c.search(ctx, c.baseURL+"/search.json?"+params.Encode(), batch, since)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *RedditClient) search(ctx context.Context, endpoint string, batch models.Batch, since time.Time) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := doRequest(c.httpClient, c.Platform(), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	quota, resetAt := redditQuota(resp.Header)
	if err := classifyStatus(c.Platform(), resp, resetAt); err != nil {
		return nil, err
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("reddit: decode response: %w", err)
	}

	out := &FetchResult{QuotaRemaining: quota}
	for _, child := range listing.Data.Children {
		p := child.Data
		posted := time.Unix(int64(p.CreatedUTC), 0).UTC()
		if posted.Before(since) {
			continue
		}
		out.Candidates = append(out.Candidates, models.Candidate{
			Platform:   models.PlatformReddit,
			PostID:     p.Name,
			Author:     redditAuthor(p.Author),
			Title:      p.Title,
			Text:       p.Selftext,
			URL:        "https://www.reddit.com" + p.Permalink,
			PostedAt:   posted,
			Keyword:    batch.Query,
			KeywordIDs: batchKeywordIDs(batch),
			Metadata: models.CandidateMetadata{
				Community: p.Subreddit,
				Upvotes:   p.Score,
				Comments:  p.NumComments,
			},
		})
	}
	return out, nil
}

// redditQuota reads the X-Ratelimit headers Reddit sends on every response.
func redditQuota(h http.Header) (*int, time.Time) {
	var quota *int
	if v, err := strconv.ParseFloat(h.Get("X-Ratelimit-Remaining"), 64); err == nil {
		n := int(v)
		quota = &n
	}
	var resetAt time.Time
	if v, err := strconv.ParseFloat(h.Get("X-Ratelimit-Reset"), 64); err == nil {
		resetAt = time.Now().Add(time.Duration(v) * time.Second)
	}
	return quota, resetAt
}

func redditAuthor(author string) string {
	if author == "[deleted]" {
		return ""
	}
	return author
}
