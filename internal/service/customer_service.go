package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lapakkirim/backend/internal/channel"
	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/pkg/crypto"
)

// CustomerService handles customer and contact-channel management.
type CustomerService struct {
	customers *repository.CustomerRepository
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(customers *repository.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

// ContactChannelInput is one channel binding supplied at customer creation.
type ContactChannelInput struct {
	Channel string // "email", "whatsapp", "telegram"
	Value   string
}

// CreateCustomerInput groups the fields needed to create a customer with its
// initial contact channels in one transaction.
type CreateCustomerInput struct {
	MerchantID uuid.UUID
	Name       string
	Tags       []string
	Channels   []ContactChannelInput
}

// Create inserts a customer and its contact channels transactionally,
// canonicalizing WhatsApp numbers and normalizing emails at write time.
func (s *CustomerService) Create(ctx context.Context, in CreateCustomerInput) (*repository.Customer, error) {
	var c *repository.Customer

	err := s.customers.WithTx(ctx, func(tx pgx.Tx) error {
		c = &repository.Customer{MerchantID: in.MerchantID, Name: in.Name, Tags: in.Tags}
		if err := s.customers.Create(ctx, tx, c); err != nil {
			return err
		}

		for _, ch := range in.Channels {
			cc, err := s.customers.GetContactChannelByName(ctx, ch.Channel)
			if err != nil {
				return err
			}

			value := ch.Value
			switch ch.Channel {
			case channel.NameWhatsApp:
				value = crypto.CanonicalizePhone(value)
			case channel.NameEmail:
				value = crypto.NormalizeEmail(value)
			}

			binding := &repository.CustomerContactChannel{
				CustomerID:       c.ID,
				ContactChannelID: cc.ID,
				Value:            value,
			}
			if err := s.customers.CreateContactChannel(ctx, tx, binding); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Get retrieves a customer scoped to its merchant.
func (s *CustomerService) Get(ctx context.Context, merchantID, id uuid.UUID) (*repository.Customer, error) {
	return s.customers.GetByID(ctx, merchantID, id)
}

// List returns customers for a merchant, optionally filtered by tag.
func (s *CustomerService) List(ctx context.Context, merchantID uuid.UUID, tags []string) ([]*repository.Customer, error) {
	return s.customers.List(ctx, repository.ListCriteria{MerchantID: merchantID, Tags: tags})
}

// Delete soft-deletes a customer.
func (s *CustomerService) Delete(ctx context.Context, merchantID, id uuid.UUID) error {
	return s.customers.SoftDelete(ctx, merchantID, id)
}

// ContactChannels returns every channel binding for a customer.
func (s *CustomerService) ContactChannels(ctx context.Context, customerID uuid.UUID) ([]*repository.CustomerContactChannel, error) {
	return s.customers.ListContactChannels(ctx, customerID)
}

// ResolveByTelegramUsername finds a customer's Telegram contact channel by
// the sender's @username, used during onboarding before a chat_id is known.
func (s *CustomerService) ResolveByTelegramUsername(ctx context.Context, username string) (*repository.CustomerContactChannel, error) {
	return s.customers.FindByTelegramUsername(ctx, username)
}

// BindTelegramChatID stamps the resolved chat_id as additional_value on a
// contact channel binding.
func (s *CustomerService) BindTelegramChatID(ctx context.Context, contactChannelID uuid.UUID, chatID string) error {
	return s.customers.SetAdditionalValue(ctx, contactChannelID, chatID)
}
