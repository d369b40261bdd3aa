package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playbookTV/leadscan-sub000/internal/models"
	"github.com/playbookTV/leadscan-sub000/internal/retry"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// HackerNewsClient searches Hacker News through the Algolia API.
type HackerNewsClient struct {
	baseURL    string
	httpClient *http.Client
	retry      retry.Policy
}

// NewHackerNewsClient creates a Hacker News adapter.
func NewHackerNewsClient(baseURL string, timeout time.Duration) *HackerNewsClient {
	if baseURL == "" {
		baseURL = "https://hn.algolia.com"
	}
	return &HackerNewsClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retry:      DefaultRetry,
	}
}

// Platform returns the platform identifier.
func (c *HackerNewsClient) Platform() string {
	return models.PlatformHackerNews
}

type hnResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	ObjectID    string `json:"objectID"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	StoryText   string `json:"story_text"`
	CommentText string `json:"comment_text"`
	URL         string `json:"url"`
	CreatedAtI  int64  `json:"created_at_i"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
}

// Fetch searches stories and comments created since the cutoff. Batched
// queries send every keyword as an optional word so any one can match.
func (c *HackerNewsClient) Fetch(ctx context.Context, batch models.Batch, since time.Time) (*FetchResult, error) {
	params := url.Values{}
	params.Set("tags", "(story,comment)")
	params.Set("numericFilters", "created_at_i>="+strconv.FormatInt(since.Unix(), 10))
	params.Set("hitsPerPage", "50")
	if batch.Batched {
		texts := make([]string, len(batch.Keywords))
		for i, k := range batch.Keywords {
			texts[i] = k.Text
		}
		params.Set("query", strings.Join(texts, " "))
		params.Set("optionalWords", strings.Join(texts, " "))
	} else {
		params.Set("query", batch.Query)
	}

	var result *FetchResult
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = c.search(ctx, c.baseURL+"/api/v1/search_by_date?"+params.Encode(), batch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HackerNewsClient) search(ctx context.Context, endpoint string, batch models.Batch) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doRequest(c.httpClient, c.Platform(), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := classifyStatus(c.Platform(), resp, time.Time{}); err != nil {
		return nil, err
	}

	var body hnResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("hackernews: decode response: %w", err)
	}

	out := &FetchResult{}
	for _, h := range body.Hits {
		text := h.StoryText
		community := "story"
		if h.CommentText != "" {
			text = h.CommentText
			community = "comment"
		}
		link := h.URL
		if link == "" {
			link = "https://news.ycombinator.com/item?id=" + h.ObjectID
		}
		out.Candidates = append(out.Candidates, models.Candidate{
			Platform:   models.PlatformHackerNews,
			PostID:     h.ObjectID,
			Author:     h.Author,
			Title:      h.Title,
			Text:       stripHTML(text),
			URL:        link,
			PostedAt:   time.Unix(h.CreatedAtI, 0).UTC(),
			Keyword:    batch.Query,
			KeywordIDs: batchKeywordIDs(batch),
			Metadata: models.CandidateMetadata{
				Community: community,
				Upvotes:   h.Points,
				Comments:  h.NumComments,
			},
		})
	}
	return out, nil
}

func stripHTML(s string) string {
	s = strings.ReplaceAll(s, "<p>", "\n")
	return strings.TrimSpace(html.UnescapeString(htmlTag.ReplaceAllString(s, " ")))
}

func batchKeywordIDs(batch models.Batch) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(batch.Keywords))
	for _, k := range batch.Keywords {
		if k.ID != uuid.Nil {
			ids = append(ids, k.ID)
		}
	}
	return ids
}
