// Package notify delivers high-scoring leads to operators.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/playbookTV/leadscan-sub000/internal/config"
	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// Notifier delivers a lead to a human channel.
type Notifier interface {
	Notify(ctx context.Context, lead *models.Lead) error
}

// Multi fans a lead out to every channel. Delivery counts as successful when
// at least one channel accepts the lead.
type Multi []Notifier

// Notify sends the lead to each channel in order.
func (m Multi) Notify(ctx context.Context, lead *models.Lead) error {
	if len(m) == 0 {
		return nil
	}

	var errs []error
	delivered := false
	for _, n := range m {
		if err := n.Notify(ctx, lead); err != nil {
			errs = append(errs, err)
			continue
		}
		delivered = true
	}

	if delivered {
		if len(errs) > 0 {
			slog.Warn("lead notification partially failed", "post_id", lead.PostID, "error", errors.Join(errs...))
		}
		return nil
	}
	return errors.Join(errs...)
}

// Nop discards notifications.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, *models.Lead) error { return nil }

// FromConfig builds the configured channels. With no channel configured it
// returns Nop.
func FromConfig(cfg *config.Config) (Notifier, error) {
	var channels Multi

	if cfg.IsTelegramEnabled() {
		tg, err := NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		channels = append(channels, tg)
		slog.Info("telegram notifications enabled", "chat_id", cfg.TelegramChatID)
	}

	if cfg.IsEmailEnabled() && len(cfg.SMTPTo) > 0 {
		channels = append(channels, NewEmail(cfg))
		slog.Info("email notifications enabled", "smtp_host", cfg.SMTPHost, "smtp_port", cfg.SMTPPort)
	}

	if len(channels) == 0 {
		slog.Info("lead notifications disabled (no channel configured)")
		return Nop{}, nil
	}
	return channels, nil
}
