package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/playbookTV/leadscan-sub000/internal/ai"
	"github.com/playbookTV/leadscan-sub000/internal/config"
	"github.com/playbookTV/leadscan-sub000/internal/db"
	"github.com/playbookTV/leadscan-sub000/internal/dedup"
	"github.com/playbookTV/leadscan-sub000/internal/handlers/api"
	"github.com/playbookTV/leadscan-sub000/internal/jobs"
	"github.com/playbookTV/leadscan-sub000/internal/keywords"
	"github.com/playbookTV/leadscan-sub000/internal/metrics"
	"github.com/playbookTV/leadscan-sub000/internal/notify"
	"github.com/playbookTV/leadscan-sub000/internal/poller"
	"github.com/playbookTV/leadscan-sub000/internal/scoring"
	"github.com/playbookTV/leadscan-sub000/internal/server"
	"github.com/playbookTV/leadscan-sub000/internal/sources"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	setupLogger(cfg)

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		slog.Error("failed to load config file", "error", err)
		os.Exit(1)
	}
	cfg.ApplyYAML(yamlCfg)

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations completed successfully")

	metrics.Init(database)

	var (
		rdb     *redis.Client
		cursors keywords.CursorStore = keywords.NewMemoryCursorStore()
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		cursors = keywords.NewRedisCursorStore(rdb, "leadscan:cursor:")
	}

	assessor, err := newAssessor(cfg)
	if err != nil {
		slog.Error("failed to configure AI assessment", "error", err)
		os.Exit(1)
	}

	notifier, err := notify.FromConfig(cfg)
	if err != nil {
		slog.Error("failed to configure notifications", "error", err)
		os.Exit(1)
	}

	srcs := sources.FromConfig(cfg)
	if len(srcs) == 0 {
		slog.Warn("no sources configured, poll cycles will find nothing")
	}

	orchestrator := poller.New(
		database,
		srcs,
		keywords.NewSelector(keywords.Options{
			MaxPerCycle: cfg.KeywordMaxPerCycle,
			Prioritize:  cfg.KeywordPrioritize,
			Rotate:      cfg.KeywordRotate,
		}, cursors),
		dedup.New(database, dedup.Options{
			Window:    cfg.DedupWindow,
			Threshold: cfg.DedupSimilarity,
		}),
		scoring.NewScorer(assessor, scoring.Options{
			AIThreshold:     cfg.AIThreshold,
			NotifyThreshold: cfg.NotifyThreshold,
		}),
		notifier,
		poller.Options{
			Lookback:        cfg.PollLookback,
			BatchSize:       cfg.KeywordBatchSize,
			MinQuota:        cfg.SourceMinQuota,
			DefaultKeywords: yamlCfg.DefaultKeywords(),
		},
	)

	if cfg.PollEnabled {
		scheduler := jobs.NewScheduler(orchestrator, cfg.PollInterval, cfg.PollOnStart)
		go scheduler.Start(ctx)
	} else {
		slog.Info("scheduled polling disabled, use POST /api/poll/run to trigger cycles")
	}

	var redisPing api.Pinger
	if rdb != nil {
		redisPing = api.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	srv := server.New(cfg)
	srv.RegisterRoutes(server.Handlers{
		Poll:   api.NewPollHandler(orchestrator, database),
		Health: api.NewHealthHandler(database, redisPing),
	})

	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	slog.Info("server started", "addr", cfg.ServerAddr, "platforms", cfg.Platforms, "ai_provider", cfg.AIProvider)

	<-ctx.Done()

	slog.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let an in-flight cycle record its run before the pool closes
	deadline := time.Now().Add(30 * time.Second)
	for orchestrator.Running() && time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
	}
	slog.Info("server exited")
}

func setupLogger(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// newAssessor returns nil when AI assessment is disabled.
func newAssessor(cfg *config.Config) (ai.Assessor, error) {
	if !cfg.IsAIEnabled() {
		slog.Info("AI assessment disabled, scoring on heuristics only")
		return nil, nil
	}

	budget, err := ai.ParseBudget(cfg.AIDailyBudget)
	if err != nil {
		return nil, err
	}

	var (
		provider ai.Provider
		pricing  ai.Pricing
	)
	switch cfg.AIProvider {
	case "openai":
		provider = ai.NewOpenAIProvider(cfg.AIAPIKey(), cfg.AIModel)
		pricing = ai.OpenAIPricing
	case "anthropic":
		provider = ai.NewAnthropicProvider(cfg.AIAPIKey(), cfg.AIModel)
		pricing = ai.AnthropicPricing
	default:
		slog.Warn("unknown AI provider, scoring on heuristics only", "provider", cfg.AIProvider)
		return nil, nil
	}

	slog.Info("AI assessment enabled", "provider", provider.Name(), "daily_budget", budget.String())
	return ai.NewClient(provider, budget, pricing, cfg.AITimeout), nil
}
