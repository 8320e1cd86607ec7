package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lapakkirim/backend/pkg/errors"
)

// User represents a row in the users table.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Status       string
	VerifiedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository handles user database operations.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Status, &u.VerifiedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	return &u, nil
}

const userColumns = `id, name, email, password_hash, status, verified_at, created_at, updated_at`

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by their (already-lowercased) email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// Create inserts a new user; email must already be normalized by the caller
// (stored as trim(email).lowercased()).
func (r *UserRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.Status).
		Scan(&u.CreatedAt, &u.UpdatedAt)
}

// MarkVerified stamps verified_at on the user.
func (r *UserRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET verified_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	return err
}
