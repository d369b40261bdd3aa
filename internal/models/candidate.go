package models

import (
	"time"

	"github.com/google/uuid"
)

// Platform identifiers.
const (
	PlatformReddit     = "reddit"
	PlatformHackerNews = "hackernews"
)

// Candidate is a raw post fetched from a source during one cycle.
type Candidate struct {
	Platform   string            `json:"platform"`
	PostID     string            `json:"post_id"`
	Author     string            `json:"author"`
	Title      string            `json:"title"`
	Text       string            `json:"text"`
	URL        string            `json:"url"`
	PostedAt   time.Time         `json:"posted_at"`
	Keyword    string            `json:"keyword"`
	KeywordIDs []uuid.UUID       `json:"keyword_ids"`
	Metadata   CandidateMetadata `json:"metadata"`
}

// CandidateMetadata holds platform engagement and placement details.
type CandidateMetadata struct {
	Community string `json:"community,omitempty"` // subreddit, HN story type
	Upvotes   int    `json:"upvotes"`
	Comments  int    `json:"comments"`
}

// Content returns title and body joined for scoring and similarity.
func (c *Candidate) Content() string {
	switch {
	case c.Title == "":
		return c.Text
	case c.Text == "":
		return c.Title
	default:
		return c.Title + "\n" + c.Text
	}
}
