// Package ai runs the budget-metered qualitative assessment of candidates.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/playbookTV/leadscan-sub000/internal/models"
	"github.com/playbookTV/leadscan-sub000/internal/retry"
)

var (
	// ErrBudgetExceeded is returned without calling the provider once the
	// daily spend ceiling is reached.
	ErrBudgetExceeded = errors.New("ai daily budget exceeded")
	// ErrMalformedResponse means the provider replied with unusable JSON.
	ErrMalformedResponse = errors.New("malformed ai response")
)

const systemPrompt = `You qualify freelance software development leads. Given a social media post, judge whether it is a real, paid opportunity for a web or software developer.

Score from 0 to 5:
- 0: not a lead (spam, self-promotion, unpaid, job seeker)
- 1-2: weak or vague opportunity
- 3: plausible paid project with missing details
- 4-5: clear paid project with budget, scope or urgency

Output JSON only, no other text:
{
  "score": 0-5,
  "summary": "one sentence describing the opportunity",
  "project_type": "e.g. web app, landing page, mobile app, api integration, other",
  "budget": "stated or estimated budget, or null",
  "timeline": "stated or estimated timeline, or null",
  "technologies": ["react"],
  "red_flags": ["equity only"]
}`

// maxPromptChars bounds the post text sent to the provider.
const maxPromptChars = 4000

// Assessor produces a qualitative assessment of candidate text.
type Assessor interface {
	Assess(ctx context.Context, text string) (*models.AIAnalysis, error)
}

// CostError is an assessment failure that still spent money. The cost has
// already been charged to the budget.
type CostError struct {
	Cost decimal.Decimal
	Err  error
}

func (e *CostError) Error() string { return e.Err.Error() }

func (e *CostError) Unwrap() error { return e.Err }

// FailedCost returns the spend carried by a failed assessment, or zero.
func FailedCost(err error) decimal.Decimal {
	var ce *CostError
	if errors.As(err, &ce) {
		return ce.Cost
	}
	return decimal.Zero
}

// Completion is a raw provider reply with token usage.
type Completion struct {
	Text         string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Provider sends one prompt to an LLM API.
type Provider interface {
	Complete(ctx context.Context, system, user string) (*Completion, error)
	Name() string
}

// Pricing converts token usage into USD.
type Pricing struct {
	InputPerMillion  decimal.Decimal
	OutputPerMillion decimal.Decimal
}

var million = decimal.NewFromInt(1_000_000)

// Cost returns the price of a completion.
func (p Pricing) Cost(c *Completion) decimal.Decimal {
	in := p.InputPerMillion.Mul(decimal.NewFromInt(c.InputTokens)).Div(million)
	out := p.OutputPerMillion.Mul(decimal.NewFromInt(c.OutputTokens)).Div(million)
	return in.Add(out)
}

// Client meters a provider against a daily budget.
type Client struct {
	provider Provider
	budget   *Budget
	pricing  Pricing
	timeout  time.Duration
	retry    retry.Policy
}

// NewClient creates a metered assessor.
func NewClient(provider Provider, budget *Budget, pricing Pricing, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		provider: provider,
		budget:   budget,
		pricing:  pricing,
		timeout:  timeout,
		retry: retry.Policy{
			MaxAttempts: 2,
			BaseDelay:   time.Second,
			MaxDelay:    4 * time.Second,
			Retryable:   func(err error) bool { return !errors.Is(err, ErrBudgetExceeded) },
		},
	}
}

// Assess checks the budget, calls the provider and parses its reply.
// The call's cost is charged even when the reply cannot be parsed.
func (c *Client) Assess(ctx context.Context, text string) (*models.AIAnalysis, error) {
	if err := c.budget.Check(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var comp *Completion
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		comp, err = c.provider.Complete(ctx, systemPrompt, truncate(text, maxPromptChars))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s completion: %w", c.provider.Name(), err)
	}

	cost := c.pricing.Cost(comp)
	c.budget.Record(cost)

	analysis, err := parseAnalysis(comp.Text)
	if err != nil {
		return nil, &CostError{Cost: cost, Err: err}
	}
	analysis.Cost = cost
	analysis.Model = comp.Model
	return analysis, nil
}

type rawAnalysis struct {
	Score        *float64 `json:"score"`
	Summary      string   `json:"summary"`
	ProjectType  string   `json:"project_type"`
	Budget       *string  `json:"budget"`
	Timeline     *string  `json:"timeline"`
	Technologies []string `json:"technologies"`
	RedFlags     []string `json:"red_flags"`
}

func parseAnalysis(content string) (*models.AIAnalysis, error) {
	content = cleanJSONResponse(content)

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw.Score == nil {
		return nil, fmt.Errorf("%w: missing score", ErrMalformedResponse)
	}

	if math.IsNaN(*raw.Score) {
		return nil, fmt.Errorf("%w: score is not a number", ErrMalformedResponse)
	}
	score := int(math.Round(math.Min(math.Max(*raw.Score, 0), 5)))

	a := &models.AIAnalysis{
		Score:        score,
		Summary:      strings.TrimSpace(raw.Summary),
		ProjectType:  strings.TrimSpace(raw.ProjectType),
		Budget:       nonEmpty(raw.Budget),
		Timeline:     nonEmpty(raw.Timeline),
		Technologies: raw.Technologies,
		RedFlags:     raw.RedFlags,
	}
	if a.Technologies == nil {
		a.Technologies = []string{}
	}
	if a.RedFlags == nil {
		a.RedFlags = []string{}
	}
	return a, nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, "unknown") {
		return nil
	}
	return &v
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
