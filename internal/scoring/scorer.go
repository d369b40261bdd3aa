package scoring

import (
	"context"
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/playbookTV/leadscan-sub000/internal/ai"
	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// Blend weights for the final score.
const (
	quickWeight = 0.3
	aiWeight    = 0.7
)

// Options configure the two-stage scorer.
type Options struct {
	AIThreshold     int // minimum quick score that earns an AI assessment
	NotifyThreshold int
}

// Result is the outcome of scoring one candidate.
type Result struct {
	Quick        models.QuickScoreBreakdown
	AI           *models.AIAnalysis
	AIError      error
	Final        int
	ShouldNotify bool
}

// AICost returns the spend attributed to this result, including calls whose
// reply could not be used.
func (r Result) AICost() decimal.Decimal {
	if r.AI == nil {
		return ai.FailedCost(r.AIError)
	}
	return r.AI.Cost
}

// BudgetExhausted reports whether the AI stage was skipped for budget.
func (r Result) BudgetExhausted() bool {
	return errors.Is(r.AIError, ai.ErrBudgetExceeded)
}

// Scorer combines the quick heuristic with an optional AI assessment.
type Scorer struct {
	assessor ai.Assessor
	opts     Options
}

// NewScorer creates a scorer. A nil assessor scores on the heuristic only.
func NewScorer(assessor ai.Assessor, opts Options) *Scorer {
	return &Scorer{assessor: assessor, opts: opts}
}

// NotifyThreshold returns the configured notification gate.
func (s *Scorer) NotifyThreshold() int {
	return s.opts.NotifyThreshold
}

// Score rates text. AI failures are kept on the result for the caller to
// log, and scoring falls back to the quick score.
func (s *Scorer) Score(ctx context.Context, text string) Result {
	res := Result{Quick: QuickScore(text)}

	if s.assessor != nil && res.Quick.Score >= s.opts.AIThreshold {
		analysis, err := s.assessor.Assess(ctx, text)
		if err != nil {
			res.AIError = err
		} else {
			res.AI = analysis
		}
	}

	var aiScore *int
	if res.AI != nil {
		aiScore = &res.AI.Score
	}
	res.Final = Combine(res.Quick.Score, aiScore)
	res.ShouldNotify = models.ShouldNotify(res.Final, s.opts.NotifyThreshold)
	return res
}

// Combine blends the quick score with a 0-5 AI score. Without an AI score the
// quick score is final. Out of range AI scores are clamped.
func Combine(quick int, aiScore *int) int {
	if aiScore == nil {
		return models.ClampScore(quick)
	}
	a := min(max(*aiScore, 0), 5)
	blended := float64(quick)*quickWeight + float64(a*2)*aiWeight
	return models.ClampScore(int(math.Round(blended)))
}
