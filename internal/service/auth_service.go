package service

import (
	"context"

	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/pkg/crypto"
	"github.com/lapakkirim/backend/pkg/errors"
)

// AuthService handles registration, login, and opaque access tokens.
type AuthService struct {
	users         *repository.UserRepository
	tokens        *repository.TokenRepository
	verifications *VerificationService
	appKey        string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *repository.UserRepository, tokens *repository.TokenRepository, verifications *VerificationService, appKey string) *AuthService {
	return &AuthService{users: users, tokens: tokens, verifications: verifications, appKey: appKey}
}

// Register creates a user and a pending verification email.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*repository.User, error) {
	normalizedEmail := crypto.NormalizeEmail(email)

	if _, err := s.users.GetByEmail(ctx, normalizedEmail); err == nil {
		return nil, errors.ErrEmailTaken
	} else if !errors.Is(err, errors.ErrUserNotFound) {
		return nil, err
	}

	hash, err := crypto.HashPassword(password, s.appKey)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}

	u := &repository.User{Name: name, Email: normalizedEmail, PasswordHash: hash, Status: "unverified"}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}

	if _, err := s.verifications.CreateForUser(ctx, u.ID, normalizedEmail); err != nil {
		return nil, err
	}

	return u, nil
}

// Login verifies credentials and issues an opaque access token, evicting the
// oldest token beyond the two-active-token cap.
func (s *AuthService) Login(ctx context.Context, email, password string) (*repository.User, string, error) {
	normalizedEmail := crypto.NormalizeEmail(email)

	u, err := s.users.GetByEmail(ctx, normalizedEmail)
	if err != nil {
		return nil, "", errors.ErrUnauthorized.WithMessage("invalid credentials")
	}

	if !crypto.VerifyPassword(u.PasswordHash, password, s.appKey) {
		return nil, "", errors.ErrUnauthorized.WithMessage("invalid credentials")
	}

	token, err := crypto.GenerateToken()
	if err != nil {
		return nil, "", errors.Wrap(err, errors.ErrInternal)
	}

	if _, err := s.tokens.Issue(ctx, u.ID, token); err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// Authenticate resolves a bearer token to its owning user (auth middleware).
func (s *AuthService) Authenticate(ctx context.Context, token string) (*repository.User, error) {
	at, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, at.UserID)
}

// Logout revokes a single access token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}
