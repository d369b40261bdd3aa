package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env       string // "development", "production", etc.
	LogLevel  string
	LogFormat string // "text" or "json"

	// Server
	ServerAddr string

	// Storage
	DatabaseURL string
	RedisURL    string // optional; enables shared limiter storage and a durable rotation cursor

	// Polling
	PollEnabled    bool
	PollOnStart    bool
	PollInterval   time.Duration
	PollLookback   time.Duration
	Platforms      []string
	SourceTimeout  time.Duration
	SourceMinQuota int

	// Keyword selection
	KeywordMaxPerCycle int
	KeywordPrioritize  bool
	KeywordRotate      bool
	KeywordBatchSize   int

	// Deduplication
	DedupWindow     time.Duration
	DedupSimilarity float64

	// Scoring
	AIThreshold     int
	NotifyThreshold int

	// AI assessment
	AIProvider      string // "openai", "anthropic" or "none"
	AIModel         string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	AIDailyBudget   string // decimal USD, e.g. "1.00"
	AITimeout       time.Duration

	// Sources
	RedditBaseURL   string
	RedditUserAgent string
	HNBaseURL       string

	// Telegram
	TelegramBotToken string
	TelegramChatID   int64

	// SMTP
	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string   // "none", "tls" or "starttls"
	SMTPTo       []string // lead notification recipients
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/leadscan?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", ""),

		PollEnabled:    getEnvBool("POLL_ENABLED", true),
		PollOnStart:    getEnvBool("POLL_ON_START", true),
		PollInterval:   getEnvDuration("POLL_INTERVAL", 15*time.Minute),
		PollLookback:   getEnvDuration("POLL_LOOKBACK", time.Hour),
		Platforms:      getEnvList("POLL_PLATFORMS", []string{"reddit", "hackernews"}),
		SourceTimeout:  getEnvDuration("SOURCE_TIMEOUT", 20*time.Second),
		SourceMinQuota: getEnvInt("SOURCE_MIN_QUOTA", 5),

		KeywordMaxPerCycle: getEnvInt("KEYWORD_MAX_PER_CYCLE", 10),
		KeywordPrioritize:  getEnvBool("KEYWORD_PRIORITIZE", true),
		KeywordRotate:      getEnvBool("KEYWORD_ROTATE", true),
		KeywordBatchSize:   getEnvInt("KEYWORD_BATCH_SIZE", 1),

		DedupWindow:     getEnvDuration("DEDUP_WINDOW", 24*time.Hour),
		DedupSimilarity: getEnvFloat("DEDUP_SIMILARITY", 0.8),

		AIThreshold:     getEnvInt("AI_THRESHOLD", 5),
		NotifyThreshold: getEnvInt("NOTIFY_THRESHOLD", 7),

		AIProvider:      getEnv("AI_PROVIDER", "none"),
		AIModel:         getEnv("AI_MODEL", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AIDailyBudget:   getEnv("AI_DAILY_BUDGET_USD", "1.00"),
		AITimeout:       getEnvDuration("AI_TIMEOUT", 30*time.Second),

		RedditBaseURL:   getEnv("REDDIT_BASE_URL", "https://www.reddit.com"),
		RedditUserAgent: getEnv("REDDIT_USER_AGENT", "leadscan/1.0"),
		HNBaseURL:       getEnv("HN_BASE_URL", "https://hn.algolia.com"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   int64(getEnvInt("TELEGRAM_CHAT_ID", 0)),

		SMTPEnabled:  getEnvBool("SMTP_ENABLED", false),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Leadscan"),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),
		SMTPTo:       getEnvList("SMTP_TO", nil),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP delivery is fully configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPEnabled && c.SMTPHost != "" && c.SMTPFrom != ""
}

// IsTelegramEnabled returns true if a bot token and chat are configured.
func (c *Config) IsTelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// AIAPIKey returns the key for the configured AI provider.
func (c *Config) AIAPIKey() string {
	switch c.AIProvider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

// IsAIEnabled returns true if an AI provider and its key are configured.
func (c *Config) IsAIEnabled() bool {
	return c.AIAPIKey() != ""
}

// ApplyYAML overlays scoring overrides from the YAML file.
func (c *Config) ApplyYAML(y *YAMLConfig) {
	if y == nil {
		return
	}
	if y.Scoring.AIThreshold != nil {
		c.AIThreshold = *y.Scoring.AIThreshold
	}
	if y.Scoring.NotifyThreshold != nil {
		c.NotifyThreshold = *y.Scoring.NotifyThreshold
	}
}
