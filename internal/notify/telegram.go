package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts leads to a chat through a bot.
type Telegram struct {
	bot    messageSender
	chatID int64
}

// NewTelegram connects to the bot API with token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Notify sends the lead as an HTML message.
func (t *Telegram) Notify(ctx context.Context, lead *models.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, telegramText(lead))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func telegramText(lead *models.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", html.EscapeString(Subject(lead)))
	fmt.Fprintf(&b, "%s\n\n", html.EscapeString(excerpt(lead.Text, excerptLength)))
	if s := summary(lead); s != "" {
		fmt.Fprintf(&b, "<i>%s</i>\n\n", html.EscapeString(s))
	}
	if len(lead.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", html.EscapeString(strings.Join(lead.Keywords, ", ")))
	}
	if lead.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", html.EscapeString(lead.Author))
	}
	if lead.URL != "" {
		fmt.Fprintf(&b, "<a href=\"%s\">Open post</a>\n%s", html.EscapeString(lead.URL), html.EscapeString(lead.URL))
	}
	return b.String()
}
