// Package channel implements the per-channel send adapters:
// WhatsApp, email, and Telegram. Each adapter is stateless and synchronous
// from the dispatcher's point of view; none retries internally.
package channel

import (
	"context"

	"github.com/lapakkirim/backend/pkg/errors"
)

// Names of the supported channels, matching contact_channels.name rows.
const (
	NameWhatsApp = "whatsapp"
	NameEmail    = "email"
	NameTelegram = "telegram"
)

// Adapter sends a composed message body to a resolved contact value.
// additionalValue carries channel-specific binding data (e.g. a Telegram
// chat_id resolved during onboarding); it is empty when unused.
type Adapter interface {
	Send(ctx context.Context, value, additionalValue, body string) error
}

// Registry resolves a channel name to its Adapter.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds a Registry from the given adapters, keyed by name.
func NewRegistry(whatsapp, email, telegram Adapter) *Registry {
	return &Registry{adapters: map[string]Adapter{
		NameWhatsApp: whatsapp,
		NameEmail:    email,
		NameTelegram: telegram,
	}}
}

// Get returns the adapter for a channel name.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, errors.ErrChannelNotFound.WithMessage("unknown channel: " + name)
	}
	return a, nil
}
