package notify

// Delivers a rendered chart to a Telegram chat.

import (
	"fmt"
	"strconv"

	"energy-trends/internal/config"
	"energy-trends/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramNotifier sends chart images through a bot.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier validates the Telegram section of the configuration
// and authorizes the bot.
func NewTelegramNotifier(cfg config.TelegramConfig) (*TelegramNotifier, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram.bot_token is required for publish")
	}
	if cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram.chat_id is required for publish")
	}

	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram.chat_id must be numeric, got %q: %w", cfg.ChatID, err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}

	log.LogInfo("Telegram bot authorized", zap.String("username", bot.Self.UserName))

	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// SendChart uploads the image at chartPath with an HTML caption.
func (n *TelegramNotifier) SendChart(chartPath, caption string) error {
	photo := tgbotapi.NewPhoto(n.chatID, tgbotapi.FilePath(chartPath))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML

	if _, err := n.bot.Send(photo); err != nil {
		return fmt.Errorf("failed to send chart to telegram: %w", err)
	}

	log.LogSuccess("Chart sent to Telegram",
		zap.String("file", chartPath),
		zap.Int64("chat_id", n.chatID))

	return nil
}
