package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lapakkirim/backend/pkg/errors"
)

// Merchant represents a row in the merchants table.
type Merchant struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	Description  *string
	Address      *string
	Phone        *string
	Tax          *float64
	MerchantCode string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// MerchantRepository handles merchant database operations.
type MerchantRepository struct {
	pool *pgxpool.Pool
}

// NewMerchantRepository creates a new MerchantRepository.
func NewMerchantRepository(pool *pgxpool.Pool) *MerchantRepository {
	return &MerchantRepository{pool: pool}
}

const merchantColumns = `id, user_id, name, description, address, phone, tax, merchant_code, created_at, updated_at, deleted_at`

func scanMerchant(row pgx.Row) (*Merchant, error) {
	var m Merchant
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Description, &m.Address, &m.Phone, &m.Tax,
		&m.MerchantCode, &m.CreatedAt, &m.UpdatedAt, &m.DeletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrMerchantNotFound
		}
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	return &m, nil
}

// GetByID retrieves a non-deleted merchant by ID.
func (r *MerchantRepository) GetByID(ctx context.Context, id uuid.UUID) (*Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE id = $1 AND deleted_at IS NULL`
	return scanMerchant(r.pool.QueryRow(ctx, query, id))
}

// GetByCode retrieves a non-deleted merchant by its merchant_code (used to
// resolve the Telegram onboarding handshake's "merchant code as plain text"
// step).
func (r *MerchantRepository) GetByCode(ctx context.Context, code string) (*Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE merchant_code = $1 AND deleted_at IS NULL`
	return scanMerchant(r.pool.QueryRow(ctx, query, code))
}

// ListByUser returns every non-deleted merchant owned by a user.
func (r *MerchantRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE user_id = $1 AND deleted_at IS NULL ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	defer rows.Close()

	var out []*Merchant
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create inserts a new merchant. merchant_code collisions surface as a
// unique-constraint violation the caller maps to errors.ErrMerchantCodeTaken.
func (r *MerchantRepository) Create(ctx context.Context, m *Merchant) error {
	query := `
		INSERT INTO merchants (id, user_id, name, description, address, phone, tax, merchant_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, query, m.ID, m.UserID, m.Name, m.Description, m.Address, m.Phone, m.Tax, m.MerchantCode).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}

// Update rewrites the mutable fields of a merchant.
func (r *MerchantRepository) Update(ctx context.Context, m *Merchant) error {
	query := `
		UPDATE merchants
		SET name = $1, description = $2, address = $3, phone = $4, tax = $5, updated_at = NOW()
		WHERE id = $6 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query, m.Name, m.Description, m.Address, m.Phone, m.Tax, m.ID).Scan(&m.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return errors.ErrMerchantNotFound
		}
		return errors.Wrap(err, errors.ErrDatabase)
	}
	return nil
}

// SoftDelete marks a merchant as deleted without removing the row.
func (r *MerchantRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE merchants SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrMerchantNotFound
	}
	return nil
}
