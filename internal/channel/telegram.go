package channel

import (
	"context"
	"strconv"

	"github.com/lapakkirim/backend/internal/telegram"
	"github.com/lapakkirim/backend/pkg/errors"
)

// TelegramAdapter wraps the Telegram Bot API client as a channel adapter.
// Requires the chat_id obtained during onboarding, passed as additionalValue.
type TelegramAdapter struct {
	client *telegram.Client
}

// NewTelegramAdapter creates a new TelegramAdapter.
func NewTelegramAdapter(client *telegram.Client) *TelegramAdapter {
	return &TelegramAdapter{client: client}
}

// Send delivers body to the chat bound in additionalValue. value (the raw
// contact value, e.g. a username) is only used for error reporting.
func (a *TelegramAdapter) Send(ctx context.Context, value, additionalValue, body string) error {
	if additionalValue == "" {
		return errors.NewChannelError(NameTelegram, value, "no chat_id bound: onboarding not completed")
	}
	chatID, err := strconv.ParseInt(additionalValue, 10, 64)
	if err != nil {
		return errors.NewChannelError(NameTelegram, value, "invalid chat_id: "+err.Error())
	}

	if _, err := a.client.SendMessage(ctx, chatID, body); err != nil {
		return errors.NewChannelError(NameTelegram, value, err.Error())
	}
	return nil
}
