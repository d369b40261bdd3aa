package sources

import (
	"log/slog"

	"github.com/playbookTV/leadscan-sub000/internal/config"
	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// FromConfig builds the adapters for every configured platform.
// Unknown platform names are logged and skipped.
func FromConfig(cfg *config.Config) []Source {
	var out []Source
	for _, name := range cfg.Platforms {
		switch name {
		case models.PlatformReddit:
			out = append(out, NewRedditClient(cfg.RedditBaseURL, cfg.RedditUserAgent, cfg.SourceTimeout))
		case models.PlatformHackerNews:
			out = append(out, NewHackerNewsClient(cfg.HNBaseURL, cfg.SourceTimeout))
		default:
			slog.Warn("unknown platform in config, skipping", "platform", name)
		}
	}
	return out
}
