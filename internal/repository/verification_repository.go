package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lapakkirim/backend/pkg/errors"
)

// Verification statuses.
const (
	VerificationStatusPending  = "pending"
	VerificationStatusVerified = "verified"
	VerificationStatusExpired  = "expired"
)

// VerificationTTL is the fixed lifetime of a verification code.
const VerificationTTL = 5 * time.Minute

// Verification represents a row in the verifications table. Exactly
// one of UserID/CustomerID is set.
type Verification struct {
	ID         uuid.UUID
	UserID     *uuid.UUID
	CustomerID *uuid.UUID
	Code       string
	Status     string
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// VerificationRepository handles verification database operations (C9).
type VerificationRepository struct {
	pool *pgxpool.Pool
}

// NewVerificationRepository creates a new VerificationRepository.
func NewVerificationRepository(pool *pgxpool.Pool) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

const verificationColumns = `id, user_id, customer_id, code, status, expires_at, created_at, updated_at`

func scanVerification(row pgx.Row) (*Verification, error) {
	var v Verification
	err := row.Scan(&v.ID, &v.UserID, &v.CustomerID, &v.Code, &v.Status, &v.ExpiresAt, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	return &v, nil
}

// Create inserts a verification row, optionally inside a transaction (tx may
// be nil to run against the pool directly).
func (r *VerificationRepository) Create(ctx context.Context, tx pgx.Tx, v *Verification) error {
	query := `
		INSERT INTO verifications (id, user_id, customer_id, code, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = VerificationStatusPending
	}
	row := func() pgx.Row {
		if tx != nil {
			return tx.QueryRow(ctx, query, v.ID, v.UserID, v.CustomerID, v.Code, v.Status, v.ExpiresAt)
		}
		return r.pool.QueryRow(ctx, query, v.ID, v.UserID, v.CustomerID, v.Code, v.Status, v.ExpiresAt)
	}()
	return row.Scan(&v.CreatedAt, &v.UpdatedAt)
}

// GetByID retrieves a verification by ID.
func (r *VerificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*Verification, error) {
	query := `SELECT ` + verificationColumns + ` FROM verifications WHERE id = $1`
	return scanVerification(r.pool.QueryRow(ctx, query, id))
}

// MarkVerified transitions a pending, matching-code verification to
// verified. Returns false (no error) if the row was already verified/expired
// or the code didn't match, so the landing page can render "already used"
// without a second mutation.
func (r *VerificationRepository) MarkVerified(ctx context.Context, id uuid.UUID, code string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE verifications SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND code = $3 AND status = $4`,
		VerificationStatusVerified, id, code, VerificationStatusPending)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrDatabase)
	}
	return tag.RowsAffected() > 0, nil
}
