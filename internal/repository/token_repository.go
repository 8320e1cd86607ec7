package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lapakkirim/backend/pkg/errors"
)

// MaxActiveTokensPerUser caps concurrent sessions; the oldest token is
// evicted once a user issues a third.
const MaxActiveTokensPerUser = 2

// AccessToken represents a row in the access_tokens table. The
// token itself is an opaque hex string, not a JWT: it carries no claims, so
// revocation is a plain row delete.
type AccessToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
}

// TokenRepository handles access_tokens database operations.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Issue inserts a new token for a user, then evicts the oldest tokens beyond
// MaxActiveTokensPerUser so the user never holds more than two at once.
func (r *TokenRepository) Issue(ctx context.Context, userID uuid.UUID, token string) (*AccessToken, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	defer tx.Rollback(ctx)

	at := &AccessToken{ID: uuid.New(), UserID: userID, Token: token}
	err = tx.QueryRow(ctx,
		`INSERT INTO access_tokens (id, user_id, token) VALUES ($1, $2, $3) RETURNING created_at`,
		at.ID, at.UserID, at.Token,
	).Scan(&at.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM access_tokens
		WHERE user_id = $1
		  AND id NOT IN (
		      SELECT id FROM access_tokens WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
		  )
	`, userID, MaxActiveTokensPerUser)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	return at, nil
}

// GetByToken resolves a bearer token to its owning user, used by the auth
// middleware on every authenticated request.
func (r *TokenRepository) GetByToken(ctx context.Context, token string) (*AccessToken, error) {
	var at AccessToken
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, token, created_at FROM access_tokens WHERE token = $1`, token,
	).Scan(&at.ID, &at.UserID, &at.Token, &at.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrInvalidToken
		}
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	return &at, nil
}

// Revoke deletes a single token (logout).
func (r *TokenRepository) Revoke(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM access_tokens WHERE token = $1`, token)
	return errors.Wrap(err, errors.ErrDatabase)
}
