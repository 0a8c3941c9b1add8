package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/phrasebot/internal/scheduler"
)

// SendNotification delivers a reminder. A 403 from Telegram means the user
// blocked the bot or deleted their account, so it is reported as permanent.
func (b *Bot) SendNotification(_ context.Context, telegramID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(telegramID, text))
	if err == nil {
		return nil
	}

	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.Code == http.StatusForbidden {
		return fmt.Errorf("%w: %s", scheduler.ErrPermanentDelivery, tgErr.Message)
	}
	return fmt.Errorf("failed to send reminder: %w", err)
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return b.sendMessage(msg)
}

// showMenu edits the message the pressed button belongs to, or sends a new one
// when there is nothing to edit
func (b *Bot) showMenu(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	if messageID == 0 {
		return b.sendText(chatID, text, markup)
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	if _, err := b.api.Request(edit); err != nil {
		var tgErr *tgbotapi.Error
		// Telegram rejects edits that change nothing
		if errors.As(err, &tgErr) && tgErr.Code == http.StatusBadRequest {
			b.logger.Debug("message not edited", "chat", chatID, "err", tgErr.Message)
			return nil
		}
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

func (b *Bot) answerCallback(callbackID string, reply callbackReply) {
	answer := tgbotapi.NewCallback(callbackID, reply.text)
	answer.ShowAlert = reply.alert
	if _, err := b.api.Request(answer); err != nil {
		b.logger.Warn("failed to answer callback", "err", err)
	}
}
