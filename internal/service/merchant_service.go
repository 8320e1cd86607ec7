package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/pkg/errors"
)

// MerchantService handles merchant CRUD.
type MerchantService struct {
	merchants *repository.MerchantRepository
}

// NewMerchantService creates a new MerchantService.
func NewMerchantService(merchants *repository.MerchantRepository) *MerchantService {
	return &MerchantService{merchants: merchants}
}

// CreateMerchantInput groups the fields a caller supplies to create a merchant.
type CreateMerchantInput struct {
	UserID       uuid.UUID
	Name         string
	Description  *string
	Address      *string
	Phone        *string
	Tax          *float64
	MerchantCode string
}

// Create inserts a merchant, normalizing merchant_code (trimmed and
// upper-cased); phone is stored as given.
func (s *MerchantService) Create(ctx context.Context, in CreateMerchantInput) (*repository.Merchant, error) {
	code := strings.ToUpper(strings.TrimSpace(in.MerchantCode))
	if existing, err := s.merchants.GetByCode(ctx, code); err == nil && existing != nil {
		return nil, errors.ErrMerchantCodeTaken
	} else if err != nil && !errors.Is(err, errors.ErrMerchantNotFound) {
		return nil, err
	}

	m := &repository.Merchant{
		UserID:       in.UserID,
		Name:         in.Name,
		Description:  in.Description,
		Address:      in.Address,
		Phone:        in.Phone,
		Tax:          in.Tax,
		MerchantCode: code,
	}
	if err := s.merchants.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Get retrieves a merchant by ID.
func (s *MerchantService) Get(ctx context.Context, id uuid.UUID) (*repository.Merchant, error) {
	return s.merchants.GetByID(ctx, id)
}

// GetByCode retrieves a merchant by its merchant_code (used during onboarding).
func (s *MerchantService) GetByCode(ctx context.Context, code string) (*repository.Merchant, error) {
	return s.merchants.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// ListForUser returns every merchant owned by a user.
func (s *MerchantService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*repository.Merchant, error) {
	return s.merchants.ListByUser(ctx, userID)
}

// OwnedBy checks a merchant belongs to a user, used by the ownership middleware.
func (s *MerchantService) OwnedBy(ctx context.Context, merchantID, userID uuid.UUID) (bool, error) {
	m, err := s.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return false, err
	}
	return m.UserID == userID, nil
}

// Update rewrites a merchant's mutable fields.
func (s *MerchantService) Update(ctx context.Context, m *repository.Merchant) error {
	return s.merchants.Update(ctx, m)
}

// Delete soft-deletes a merchant.
func (s *MerchantService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.merchants.SoftDelete(ctx, id)
}
