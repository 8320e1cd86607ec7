// Package onboarding implements the Telegram /connect handshake that binds a
// customer's chat_id to their existing contact-channel record.
package onboarding

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lapakkirim/backend/internal/service"
	"github.com/lapakkirim/backend/internal/telegram"
	"github.com/lapakkirim/backend/pkg/errors"
	"github.com/lapakkirim/backend/pkg/redis"
)

// Handler drives the bot side of the onboarding conversation.
type Handler struct {
	bot           *telegram.Client
	state         *redis.OnboardingStateStore
	merchants     *service.MerchantService
	customers     *service.CustomerService
	verifications *service.VerificationService
	logger        *slog.Logger
}

// New creates a new Handler.
func New(
	bot *telegram.Client,
	state *redis.OnboardingStateStore,
	merchants *service.MerchantService,
	customers *service.CustomerService,
	verifications *service.VerificationService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:           bot,
		state:         state,
		merchants:     merchants,
		customers:     customers,
		verifications: verifications,
		logger:        logger,
	}
}

const (
	greeting       = "Hi! I can deliver your invoices and reminders here. Send /connect to link your account."
	askMerchantCode = "Send the merchant code your business gave you."
	clearedMessage  = "Disconnected. Send /connect whenever you want to link again."
	unknownCommand  = "I didn't understand that. Send /connect to link your account."
	noUsername      = "Set a Telegram username in your app settings first, then send /connect again."
	badCode         = "I couldn't find a business with that code. Check the code and try again."
	notACustomer    = "I couldn't find you as a customer of that business. Ask them to add your Telegram username first."
	connectedOK     = "You're connected. Invoices and reminders will be sent here from now on."
)

// HandleUpdate processes one webhook Update, replying over the bot API.
// Errors are logged, never surfaced to the caller: the webhook endpoint
// always acknowledges Telegram with 200 regardless of outcome.
func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return
	}
	chatID := update.Message.Chat.ID
	username := update.Message.From.Username
	text := strings.TrimSpace(update.Message.Text)

	switch text {
	case "/start":
		h.reply(ctx, chatID, greeting)
	case "/connect":
		if err := h.state.SetConnecting(ctx, chatID); err != nil {
			h.logger.Error("onboarding: set connecting state", "error", err)
			return
		}
		h.reply(ctx, chatID, askMerchantCode)
	case "/clear":
		if err := h.state.Clear(ctx, chatID); err != nil {
			h.logger.Error("onboarding: clear state", "error", err)
			return
		}
		h.reply(ctx, chatID, clearedMessage)
	default:
		h.handleText(ctx, chatID, username, text)
	}
}

func (h *Handler) handleText(ctx context.Context, chatID int64, username, text string) {
	connecting, err := h.state.IsConnecting(ctx, chatID)
	if err != nil {
		h.logger.Error("onboarding: read connecting state", "error", err)
		return
	}
	if !connecting {
		h.reply(ctx, chatID, unknownCommand)
		return
	}
	h.connect(ctx, chatID, username, text)
}

// connect resolves a merchant code + the sender's Telegram username into an
// existing customer contact-channel binding, starts a Verification for the
// customer, and stamps the chat_id on the binding. The handshake is
// self-verifying: only the real chat can answer with the merchant code
// Telegram just delivered it, so no separate verification link is sent
// (unlike the email flow in VerificationService) — but the Verification
// row is still created as the record of the handshake.
func (h *Handler) connect(ctx context.Context, chatID int64, username, code string) {
	if username == "" {
		h.reply(ctx, chatID, noUsername)
		return
	}

	merchant, err := h.merchants.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, errors.ErrMerchantNotFound) {
			h.reply(ctx, chatID, badCode)
			return
		}
		h.logger.Error("onboarding: lookup merchant code", "error", err)
		return
	}

	cc, err := h.customers.ResolveByTelegramUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errors.ErrChannelNotFound) {
			h.reply(ctx, chatID, notACustomer)
			return
		}
		h.logger.Error("onboarding: resolve telegram username", "error", err)
		return
	}

	if _, err := h.customers.Get(ctx, merchant.ID, cc.CustomerID); err != nil {
		h.reply(ctx, chatID, notACustomer)
		return
	}

	if _, err := h.verifications.CreateSilentForCustomer(ctx, cc.CustomerID); err != nil {
		h.logger.Error("onboarding: create verification", "error", err)
		return
	}

	if err := h.customers.BindTelegramChatID(ctx, cc.ID, strconv.FormatInt(chatID, 10)); err != nil {
		h.logger.Error("onboarding: bind chat id", "error", err)
		return
	}
	if err := h.state.Clear(ctx, chatID); err != nil {
		h.logger.Error("onboarding: clear state after connect", "error", err)
	}
	h.reply(ctx, chatID, connectedOK)
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if _, err := h.bot.SendMessage(ctx, chatID, text); err != nil {
		h.logger.Error("onboarding: send reply", "error", err, "chat_id", chatID)
	}
}
