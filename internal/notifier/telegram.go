package notifier

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramCourier delivers digests over the Telegram Bot API. The API
// client has no context support, so the send runs in a goroutine raced
// against the caller's deadline.
type TelegramCourier struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramCourier(bot *tgbotapi.BotAPI) *TelegramCourier {
	return &TelegramCourier{bot: bot}
}

func (c *TelegramCourier) Send(ctx context.Context, subscriberID int64, text string) error {
	msg := tgbotapi.NewMessage(subscriberID, text)
	msg.ParseMode = "MarkdownV2"
	msg.DisableWebPagePreview = true

	errChan := make(chan error, 1)

	go func() {
		_, err := c.bot.Send(msg)
		errChan <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}
