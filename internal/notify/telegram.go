// Package notify delivers the end-of-run summary to Telegram when a bot
// token is configured. Notification failures are logged, never fatal.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"candlescan/models"
)

// Notifier sends run reports to a Telegram chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// New creates a Notifier, or (nil, nil) when token/chat are not configured
// so callers can treat notification as absent rather than broken.
func New(token string, chatID int64) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	return &Notifier{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "notify").Logger(),
	}, nil
}

// SendReport delivers the run summary.
func (n *Notifier) SendReport(report *models.RunReport) {
	if n == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, report.Summary())
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Warn().Err(err).Msg("failed to send run report")
	}
}
