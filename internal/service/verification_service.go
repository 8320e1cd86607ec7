package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lapakkirim/backend/internal/channel"
	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/pkg/crypto"
	"github.com/lapakkirim/backend/pkg/errors"
)

// VerificationService implements the generic verification flow shared by
// user email verification and customer contact verification.
type VerificationService struct {
	verifications *repository.VerificationRepository
	users         *repository.UserRepository
	customers     *repository.CustomerRepository
	channels      *channel.Registry
	host          string
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(
	verifications *repository.VerificationRepository,
	users *repository.UserRepository,
	customers *repository.CustomerRepository,
	channels *channel.Registry,
	host string,
) *VerificationService {
	return &VerificationService{
		verifications: verifications,
		users:         users,
		customers:     customers,
		channels:      channels,
		host:          host,
	}
}

// CreateForUser generates a verification code for a user and emails a
// verification link to the given address.
func (s *VerificationService) CreateForUser(ctx context.Context, userID uuid.UUID, email string) (*repository.Verification, error) {
	v, err := s.createRecord(ctx, &userID, nil)
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/verify?code=%s&id=%s", s.host, v.Code, v.ID)
	adapter, err := s.channels.Get(channel.NameEmail)
	if err != nil {
		return nil, err
	}
	if err := adapter.Send(ctx, email, "", link); err != nil {
		return nil, err
	}

	return v, nil
}

// CreateForCustomer generates a verification code for a customer and sends a
// verification link over the given channel.
func (s *VerificationService) CreateForCustomer(ctx context.Context, customerID uuid.UUID, channelName, value string) (*repository.Verification, error) {
	v, err := s.createRecord(ctx, nil, &customerID)
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/verify?code=%s&id=%s", s.host, v.Code, v.ID)
	adapter, err := s.channels.Get(channelName)
	if err != nil {
		return nil, err
	}
	if err := adapter.Send(ctx, value, "", link); err != nil {
		return nil, err
	}

	return v, nil
}

// CreateSilentForCustomer starts a Verification row for a customer without
// dispatching a link over any channel. Used by the Telegram onboarding
// handshake, which is self-verifying: the chat that answers with the
// merchant code already proves it's the right recipient, so there is no
// separate link to click through.
func (s *VerificationService) CreateSilentForCustomer(ctx context.Context, customerID uuid.UUID) (*repository.Verification, error) {
	return s.createRecord(ctx, nil, &customerID)
}

func (s *VerificationService) createRecord(ctx context.Context, userID, customerID *uuid.UUID) (*repository.Verification, error) {
	code, err := crypto.GenerateVerificationCode()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}
	expiresAt := time.Now().Add(repository.VerificationTTL)

	v := &repository.Verification{
		UserID:     userID,
		CustomerID: customerID,
		Code:       code,
		Status:     repository.VerificationStatusPending,
		ExpiresAt:  &expiresAt,
	}
	if err := s.verifications.Create(ctx, nil, v); err != nil {
		return nil, err
	}
	return v, nil
}

// LandingResult describes the outcome of hitting the verification link, used
// by the HTML landing-page handler to pick a message.
type LandingResult struct {
	Outcome string // "verified", "already_used", "expired", "not_found"
}

// Land processes a GET /verify?code=&id= hit.
func (s *VerificationService) Land(ctx context.Context, id uuid.UUID, code string) (*LandingResult, error) {
	v, err := s.verifications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return &LandingResult{Outcome: "not_found"}, nil
		}
		return nil, err
	}

	if v.Status != repository.VerificationStatusPending {
		return &LandingResult{Outcome: "already_used"}, nil
	}

	if v.ExpiresAt != nil && time.Now().After(*v.ExpiresAt) {
		// Expired links perform no mutation: the row and the principal's
		// verified_at are left exactly as they were.
		return &LandingResult{Outcome: "expired"}, nil
	}

	verified, err := s.verifications.MarkVerified(ctx, v.ID, code)
	if err != nil {
		return nil, err
	}
	if !verified {
		return &LandingResult{Outcome: "already_used"}, nil
	}

	switch {
	case v.UserID != nil:
		if err := s.users.MarkVerified(ctx, *v.UserID); err != nil {
			return nil, err
		}
	case v.CustomerID != nil:
		if err := s.markCustomerVerified(ctx, *v.CustomerID); err != nil {
			return nil, err
		}
	}

	return &LandingResult{Outcome: "verified"}, nil
}

func (s *VerificationService) markCustomerVerified(ctx context.Context, customerID uuid.UUID) error {
	return s.customers.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `UPDATE customers SET verified_at = NOW(), updated_at = NOW() WHERE id = $1`, customerID)
		return err
	})
}
