package config

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/playbookTV/leadscan-sub000/internal/models"
	"github.com/playbookTV/leadscan-sub000/internal/validation"
)

// YAMLConfig represents the structure of the config.yaml file.
// Seed keywords are easier to manage in YAML than env vars.
type YAMLConfig struct {
	Keywords KeywordsConfig `yaml:"keywords"`
	Scoring  ScoringConfig  `yaml:"scoring"`
}

// KeywordsConfig holds the default keyword set.
type KeywordsConfig struct {
	Defaults []KeywordConfig `yaml:"defaults"`
}

// KeywordConfig defines one seed keyword.
type KeywordConfig struct {
	Text     string `yaml:"text"`
	Platform string `yaml:"platform,omitempty"` // empty applies to all platforms
	Category string `yaml:"category,omitempty"`
}

// ScoringConfig overrides env thresholds when set.
type ScoringConfig struct {
	AIThreshold     *int `yaml:"ai_threshold,omitempty"`
	NotifyThreshold *int `yaml:"notify_threshold,omitempty"`
}

// builtinKeywords keep the pipeline from ever polling with an empty set.
var builtinKeywords = []KeywordConfig{
	{Text: "looking for a developer", Category: "hiring"},
	{Text: "need a developer", Category: "hiring"},
	{Text: "hiring freelance", Category: "hiring"},
	{Text: "react developer", Category: "tech"},
	{Text: "need a website", Category: "web"},
	{Text: "build an mvp", Category: "saas"},
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	return ParseYAMLConfig(data)
}

// ParseYAMLConfig decodes YAML config bytes.
func ParseYAMLConfig(data []byte) (*YAMLConfig, error) {
	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	for i := range cfg.Keywords.Defaults {
		if cfg.Keywords.Defaults[i].Category == "" {
			cfg.Keywords.Defaults[i].Category = "general"
		}
	}

	return &cfg, nil
}

// DefaultKeywords returns the seed set, falling back to the built-in list.
// Invalid entries are logged and dropped; text is normalized and repeats of
// the same text and platform are collapsed.
func (c *YAMLConfig) DefaultKeywords() []models.Keyword {
	src := builtinKeywords
	if c != nil && len(c.Keywords.Defaults) > 0 {
		src = c.Keywords.Defaults
	}

	seen := make(map[string]bool, len(src))
	out := make([]models.Keyword, 0, len(src))
	for _, kc := range src {
		if ok, msg := validation.ValidateKeyword(kc.Text); !ok {
			slog.Warn("skipping invalid seed keyword", "keyword", kc.Text, "reason", msg)
			continue
		}
		text := validation.NormalizeKeyword(kc.Text)
		key := text + "|" + kc.Platform
		if seen[key] {
			continue
		}
		seen[key] = true

		k := models.Keyword{Text: text, Category: kc.Category, Enabled: true}
		if kc.Platform != "" {
			platform := kc.Platform
			k.Platform = &platform
		}
		out = append(out, k)
	}
	return out
}
