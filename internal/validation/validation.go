package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// MaxKeywordLength bounds operator-defined search terms.
const MaxKeywordLength = 100

// ErrInvalidCandidate marks a candidate that cannot become a lead.
var ErrInvalidCandidate = errors.New("invalid candidate")

// ValidateKeyword checks a search term: non-blank, bounded, single line.
func ValidateKeyword(text string) (bool, string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false, "Keyword is required"
	}
	if utf8.RuneCountInString(trimmed) > MaxKeywordLength {
		return false, fmt.Sprintf("Keyword must be at most %d characters", MaxKeywordLength)
	}
	if strings.ContainsAny(trimmed, "\r\n\t") {
		return false, "Keyword must be a single line"
	}
	return true, ""
}

// NormalizeKeyword trims and lowercases a keyword so comparisons are case-insensitive.
func NormalizeKeyword(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// ValidateCandidate rejects posts that are missing the fields dedup and
// scoring depend on.
func ValidateCandidate(c models.Candidate) error {
	switch {
	case c.Platform == "":
		return fmt.Errorf("%w: missing platform", ErrInvalidCandidate)
	case strings.TrimSpace(c.PostID) == "":
		return fmt.Errorf("%w: missing post id", ErrInvalidCandidate)
	case strings.TrimSpace(c.Author) == "":
		return fmt.Errorf("%w: missing author", ErrInvalidCandidate)
	case strings.TrimSpace(c.Content()) == "":
		return fmt.Errorf("%w: empty text", ErrInvalidCandidate)
	}
	if ok, msg := ValidateURL(c.URL); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidCandidate, msg)
	}
	return nil
}
