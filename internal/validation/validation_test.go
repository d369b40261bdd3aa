package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

func TestValidateKeyword(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		want    bool
	}{
		{"single word", "freelance", true},
		{"phrase", "looking for developer", true},
		{"punctuation", "need a dev!", true},
		{"unicode", "développeur web", true},
		{"empty string", "", false},
		{"blank", "   ", false},
		{"too long", strings.Repeat("a", 101), false},
		{"max length", strings.Repeat("a", 100), true},
		{"newline", "hire\nme", false},
		{"tab", "hire\tme", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ValidateKeyword(tt.keyword)
			if got != tt.want {
				t.Errorf("ValidateKeyword(%q) = %v, want %v", tt.keyword, got, tt.want)
			}
		})
	}
}

func TestNormalizeKeyword(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"React Developer", "react developer"},
		{"  need   a  dev ", "need a dev"},
		{"already normal", "already normal"},
	}
	for _, tt := range tests {
		if got := NormalizeKeyword(tt.in); got != tt.want {
			t.Errorf("NormalizeKeyword(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		valid   bool
		wantMsg string
	}{
		{"https", "https://www.reddit.com/r/forhire/comments/abc/", true, ""},
		{"http", "http://news.ycombinator.com/item?id=1", true, ""},
		{"uppercase scheme", "HTTPS://example.com", true, ""},
		{"empty", "", false, "URL is required"},
		{"javascript", "javascript:alert(1)", false, "URL must use http:// or https:// scheme"},
		{"ftp", "ftp://example.com/file", false, "URL must use http:// or https:// scheme"},
		{"no host", "https://", false, "URL must have a valid host"},
		{"bad escape", "http://%zz", false, "Invalid URL format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateURL(tt.url)
			if valid != tt.valid {
				t.Errorf("ValidateURL(%q) valid = %v, want %v", tt.url, valid, tt.valid)
			}
			if msg != tt.wantMsg {
				t.Errorf("ValidateURL(%q) msg = %q, want %q", tt.url, msg, tt.wantMsg)
			}
		})
	}
}

func TestValidateCandidate(t *testing.T) {
	valid := models.Candidate{
		Platform: models.PlatformHackerNews,
		PostID:   "123",
		Author:   "pg",
		Text:     "Looking for a contractor",
		URL:      "https://news.ycombinator.com/item?id=123",
	}

	tests := []struct {
		name    string
		mutate  func(c *models.Candidate)
		wantErr bool
	}{
		{"valid", func(c *models.Candidate) {}, false},
		{"title only", func(c *models.Candidate) { c.Text = ""; c.Title = "Hiring" }, false},
		{"missing platform", func(c *models.Candidate) { c.Platform = "" }, true},
		{"missing post id", func(c *models.Candidate) { c.PostID = " " }, true},
		{"missing author", func(c *models.Candidate) { c.Author = "" }, true},
		{"empty text", func(c *models.Candidate) { c.Text = "  " }, true},
		{"bad url", func(c *models.Candidate) { c.URL = "javascript:void(0)" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := ValidateCandidate(c)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCandidate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCandidate) {
				t.Errorf("ValidateCandidate() error = %v, want ErrInvalidCandidate", err)
			}
		})
	}
}
