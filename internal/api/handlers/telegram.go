package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lapakkirim/backend/internal/onboarding"
	"github.com/lapakkirim/backend/internal/telegram"
)

// TelegramHandler receives the Telegram bot webhook.
type TelegramHandler struct {
	onboarding  *onboarding.Handler
	secretToken string
}

// NewTelegramHandler creates a new TelegramHandler.
func NewTelegramHandler(ob *onboarding.Handler, secretToken string) *TelegramHandler {
	return &TelegramHandler{onboarding: ob, secretToken: secretToken}
}

// Webhook handles POST /webhooks/telegram. Telegram requires 200 for every
// delivery it considers handled, including ones this service rejects for a
// bad secret — returning anything else makes Telegram retry and eventually
// disable the webhook.
func (h *TelegramHandler) Webhook(c *fiber.Ctx) error {
	if c.Get("X-Telegram-Bot-Api-Secret-Token") != h.secretToken {
		return c.SendStatus(fiber.StatusOK)
	}

	var update telegram.Update
	if err := c.BodyParser(&update); err != nil {
		return c.SendStatus(fiber.StatusOK)
	}

	h.onboarding.HandleUpdate(c.Context(), update)
	return c.SendStatus(fiber.StatusOK)
}
