package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramSender is the slice of the bot API the notifier needs.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier delivers confirmations as Telegram messages. The
// recipient contact is the chat id as a decimal string.
type TelegramNotifier struct {
	sender TelegramSender
	logger zerolog.Logger
}

func NewTelegram(botToken string, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram notifier: %w", err)
	}
	return NewTelegramWithSender(bot, logger), nil
}

func NewTelegramWithSender(sender TelegramSender, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender: sender,
		logger: logger.With().Str("component", "notify.telegram").Logger(),
	}
}

func (t *TelegramNotifier) Notify(_ context.Context, recipient, subject, body string) bool {
	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		t.logger.Error().Str("recipient", recipient).Msg("recipient is not a chat id")
		return false
	}

	msg := tgbotapi.NewMessage(chatID, subject+"\n\n"+body)
	if _, err := t.sender.Send(msg); err != nil {
		t.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send message failed")
		return false
	}
	return true
}
