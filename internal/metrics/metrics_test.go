package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name   string
		result *models.CycleResult
		want   string
	}{
		{"clean", &models.CycleResult{}, OutcomeOK},
		{"errors", &models.CycleResult{Errors: []models.CycleError{{Stage: models.StageFetch}}}, OutcomePartial},
		{"aborted", &models.CycleResult{Aborted: true, Errors: []models.CycleError{{Stage: models.StageKeywords}}}, OutcomeAborted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Outcome(tt.result); got != tt.want {
				t.Errorf("Outcome() = %q, want %q", got, tt.want)
			}
		})
	}
}

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	var m dto.Metric
	if err := (<-ch).Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRecordCycle(t *testing.T) {
	start := time.Now()
	r := models.NewCycleResult(start)
	r.FinishedAt = start.Add(3 * time.Second)
	r.Merge(&models.PlatformStats{Platform: "metrics-test", Candidates: 4, Leads: 2, Duplicates: 1}, nil, decimal.RequireFromString("0.25"))
	r.Notifications = 1

	leadsBefore := counterValue(t, leadsTotal.WithLabelValues("metrics-test"))
	spendBefore := counterValue(t, aiSpendTotal)

	RecordCycle(r)

	if got := counterValue(t, leadsTotal.WithLabelValues("metrics-test")) - leadsBefore; got != 2 {
		t.Errorf("leads delta = %v, want 2", got)
	}
	if got := counterValue(t, aiSpendTotal) - spendBefore; got != 0.25 {
		t.Errorf("ai spend delta = %v, want 0.25", got)
	}
}

type fakeKeywords struct {
	kws []models.Keyword
	err error
}

func (f fakeKeywords) GetActiveKeywords(context.Context) ([]models.Keyword, error) {
	return f.kws, f.err
}

func TestKeywordCollector(t *testing.T) {
	reddit := "reddit"
	c := NewKeywordCollector(fakeKeywords{kws: []models.Keyword{
		{Text: "freelance", LeadsFound: 3, ConversionRate: 0.5},
		{Text: "hiring", Platform: &reddit, LeadsFound: 1},
	}})

	ch := make(chan prometheus.Metric, 10)
	c.Collect(ch)
	close(ch)

	n := 0
	for range ch {
		n++
	}
	if n != 4 {
		t.Errorf("collected %d metrics, want 4", n)
	}
}

func TestKeywordCollectorError(t *testing.T) {
	c := NewKeywordCollector(fakeKeywords{err: errors.New("db down")})

	ch := make(chan prometheus.Metric, 10)
	c.Collect(ch)
	close(ch)

	if len(ch) != 0 {
		t.Errorf("collected %d metrics on error, want 0", len(ch))
	}
}
