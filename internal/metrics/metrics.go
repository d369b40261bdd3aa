package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// Cycle outcomes.
const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeAborted = "aborted"
)

var (
	cyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadscan_poll_cycles_total",
		Help: "Completed poll cycles by outcome",
	}, []string{"outcome"})

	cyclesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadscan_poll_cycles_skipped_total",
		Help: "Poll triggers ignored because a cycle was already running",
	})

	cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "leadscan_poll_cycle_duration_seconds",
		Help:    "Wall-clock duration of poll cycles",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	})

	candidatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadscan_candidates_total",
		Help: "Candidate posts fetched by platform",
	}, []string{"platform"})

	leadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadscan_leads_total",
		Help: "Leads created by platform",
	}, []string{"platform"})

	duplicatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadscan_duplicates_total",
		Help: "Candidates dropped as duplicates by platform",
	}, []string{"platform"})

	notificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadscan_notifications_total",
		Help: "Lead notifications delivered",
	})

	aiSpendTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadscan_ai_spend_usd_total",
		Help: "AI assessment spend in US dollars",
	})
)

var (
	keywordLeadsDesc = prometheus.NewDesc(
		"leadscan_keyword_leads_found",
		"Leads found per keyword",
		[]string{"keyword", "platform"},
		nil,
	)
	keywordConversionDesc = prometheus.NewDesc(
		"leadscan_keyword_conversion_rate",
		"Leads found per query for each keyword",
		[]string{"keyword", "platform"},
		nil,
	)
)

// KeywordLister reads the keywords exported on each scrape.
type KeywordLister interface {
	GetActiveKeywords(ctx context.Context) ([]models.Keyword, error)
}

// KeywordCollector is a custom Prometheus collector that reads keyword
// performance counters from the database on each scrape.
type KeywordCollector struct {
	store KeywordLister
}

// NewKeywordCollector creates a collector over store.
func NewKeywordCollector(store KeywordLister) *KeywordCollector {
	return &KeywordCollector{store: store}
}

// Describe sends the metric descriptors to the channel.
func (c *KeywordCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- keywordLeadsDesc
	ch <- keywordConversionDesc
}

// Collect queries the database for keyword counters and emits them as gauges.
func (c *KeywordCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	kws, err := c.store.GetActiveKeywords(ctx)
	if err != nil {
		slog.Error("failed to collect keyword metrics", "error", err)
		return
	}
	for _, k := range kws {
		platform := "all"
		if k.Platform != nil && *k.Platform != "" {
			platform = *k.Platform
		}
		ch <- prometheus.MustNewConstMetric(keywordLeadsDesc, prometheus.GaugeValue, float64(k.LeadsFound), k.Text, platform)
		ch <- prometheus.MustNewConstMetric(keywordConversionDesc, prometheus.GaugeValue, k.ConversionRate, k.Text, platform)
	}
}

var initOnce sync.Once

// Init registers the collectors with the default registry. A nil store skips
// the keyword collector. Must be called once at startup.
func Init(store KeywordLister) {
	initOnce.Do(func() {
		prometheus.MustRegister(
			cyclesTotal,
			cyclesSkipped,
			cycleDuration,
			candidatesTotal,
			leadsTotal,
			duplicatesTotal,
			notificationsTotal,
			aiSpendTotal,
		)
		if store != nil {
			prometheus.MustRegister(NewKeywordCollector(store))
		}
	})
}

// Outcome classifies a finished cycle.
func Outcome(r *models.CycleResult) string {
	switch {
	case r.Aborted:
		return OutcomeAborted
	case len(r.Errors) > 0:
		return OutcomePartial
	default:
		return OutcomeOK
	}
}

// RecordCycle records a finished cycle.
func RecordCycle(r *models.CycleResult) {
	cyclesTotal.WithLabelValues(Outcome(r)).Inc()
	cycleDuration.Observe(r.Duration().Seconds())
	for name, ps := range r.Platforms {
		candidatesTotal.WithLabelValues(name).Add(float64(ps.Candidates))
		leadsTotal.WithLabelValues(name).Add(float64(ps.Leads))
		duplicatesTotal.WithLabelValues(name).Add(float64(ps.Duplicates))
	}
	notificationsTotal.Add(float64(r.Notifications))
	if spend := r.AICost.InexactFloat64(); spend > 0 {
		aiSpendTotal.Add(spend)
	}
}

// RecordSkipped records a trigger ignored by the reentrancy guard.
func RecordSkipped() {
	cyclesSkipped.Inc()
}
