package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lapakkirim/backend/pkg/errors"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Customer represents a row in the customers table.
type Customer struct {
	ID         uuid.UUID
	MerchantID uuid.UUID
	Name       string
	Tags       []string
	VerifiedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// ContactChannel is a row in the small reference table of channel kinds
// (email, whatsapp, telegram) that CustomerContactChannel rows point at.
type ContactChannel struct {
	ID   int
	Name string
}

// CustomerContactChannel binds a customer to a value on one channel, plus an
// optional additional_value populated once onboarding resolves it.
type CustomerContactChannel struct {
	ID               uuid.UUID
	CustomerID       uuid.UUID
	ContactChannelID int
	ChannelName      string
	Value            string
	AdditionalValue  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CustomerRepository handles customer and contact-channel database operations.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = `id, merchant_id, name, tags, verified_at, created_at, updated_at, deleted_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.MerchantID, &c.Name, &c.Tags, &c.VerifiedAt, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrCustomerNotFound
		}
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	return &c, nil
}

// GetByID retrieves a non-deleted customer by ID, scoped to a merchant so
// one merchant can never read another's customers.
func (r *CustomerRepository) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 AND merchant_id = $2 AND deleted_at IS NULL`
	return scanCustomer(r.pool.QueryRow(ctx, query, id, merchantID))
}

// ListCriteria narrows the customer listing, supporting the tag filter called
// out (e.g. list every customer tagged "vip").
type ListCriteria struct {
	MerchantID uuid.UUID
	Tags       []string
	Limit      uint64
	Offset     uint64
}

// List returns customers for a merchant, optionally filtered by tag overlap.
// Uses squirrel because the tag filter is conditional and the predicate
// shape (array overlap vs. no filter) varies per call.
func (r *CustomerRepository) List(ctx context.Context, crit ListCriteria) ([]*Customer, error) {
	query := psql.Select(customerColumns).
		From("customers").
		Where(sq.Eq{"merchant_id": crit.MerchantID}).
		Where("deleted_at IS NULL").
		OrderBy("created_at DESC")

	if len(crit.Tags) > 0 {
		query = query.Where(sq.Expr("tags && ?", crit.Tags))
	}
	if crit.Limit > 0 {
		query = query.Limit(crit.Limit)
	}
	if crit.Offset > 0 {
		query = query.Offset(crit.Offset)
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	defer rows.Close()

	var out []*Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create inserts a customer row.
func (r *CustomerRepository) Create(ctx context.Context, tx pgx.Tx, c *Customer) error {
	query := `
		INSERT INTO customers (id, merchant_id, name, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return tx.QueryRow(ctx, query, c.ID, c.MerchantID, c.Name, c.Tags).Scan(&c.CreatedAt, &c.UpdatedAt)
}

// SoftDelete marks a customer as deleted.
func (r *CustomerRepository) SoftDelete(ctx context.Context, merchantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET deleted_at = NOW() WHERE id = $1 AND merchant_id = $2 AND deleted_at IS NULL`,
		id, merchantID)
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrCustomerNotFound
	}
	return nil
}

// GetContactChannelByName looks up the reference-table row for a channel
// kind ("email", "whatsapp", "telegram").
func (r *CustomerRepository) GetContactChannelByName(ctx context.Context, name string) (*ContactChannel, error) {
	var cc ContactChannel
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM contact_channels WHERE name = $1`, name).Scan(&cc.ID, &cc.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrChannelNotFound
		}
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	return &cc, nil
}

// CreateContactChannel binds a value (and optional additional_value) on one
// channel to a customer, inside the caller's transaction.
func (r *CustomerRepository) CreateContactChannel(ctx context.Context, tx pgx.Tx, cc *CustomerContactChannel) error {
	query := `
		INSERT INTO customer_contact_channels (id, customer_id, contact_channel_id, value, additional_value)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	if cc.ID == uuid.Nil {
		cc.ID = uuid.New()
	}
	return tx.QueryRow(ctx, query, cc.ID, cc.CustomerID, cc.ContactChannelID, cc.Value, cc.AdditionalValue).
		Scan(&cc.CreatedAt, &cc.UpdatedAt)
}

// ListContactChannels returns every channel binding for a customer, joined
// against the reference table so callers get the channel name directly,
// ordered by contact_channel_id then id so every call sees the same order.
func (r *CustomerRepository) ListContactChannels(ctx context.Context, customerID uuid.UUID) ([]*CustomerContactChannel, error) {
	query := `
		SELECT ccc.id, ccc.customer_id, ccc.contact_channel_id, cc.name, ccc.value, ccc.additional_value,
		       ccc.created_at, ccc.updated_at
		FROM customer_contact_channels ccc
		JOIN contact_channels cc ON cc.id = ccc.contact_channel_id
		WHERE ccc.customer_id = $1
		ORDER BY ccc.contact_channel_id, ccc.id
	`
	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	defer rows.Close()

	var out []*CustomerContactChannel
	for rows.Next() {
		var cc CustomerContactChannel
		if err := rows.Scan(&cc.ID, &cc.CustomerID, &cc.ContactChannelID, &cc.ChannelName, &cc.Value,
			&cc.AdditionalValue, &cc.CreatedAt, &cc.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrDatabase)
		}
		out = append(out, &cc)
	}
	return out, rows.Err()
}

// FindByTelegramUsername locates the customer contact channel bound to a
// Telegram username, used while the onboarding handshake still only knows
// the sender's @username and not yet their chat_id.
func (r *CustomerRepository) FindByTelegramUsername(ctx context.Context, username string) (*CustomerContactChannel, error) {
	query := `
		SELECT ccc.id, ccc.customer_id, ccc.contact_channel_id, cc.name, ccc.value, ccc.additional_value,
		       ccc.created_at, ccc.updated_at
		FROM customer_contact_channels ccc
		JOIN contact_channels cc ON cc.id = ccc.contact_channel_id
		WHERE cc.name = 'telegram' AND ccc.value = $1
		LIMIT 1
	`
	var cc CustomerContactChannel
	err := r.pool.QueryRow(ctx, query, username).Scan(&cc.ID, &cc.CustomerID, &cc.ContactChannelID, &cc.ChannelName,
		&cc.Value, &cc.AdditionalValue, &cc.CreatedAt, &cc.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrChannelNotFound
		}
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	return &cc, nil
}

// SetAdditionalValue stamps the additional_value (e.g. a resolved chat_id)
// on a contact channel binding once onboarding completes.
func (r *CustomerRepository) SetAdditionalValue(ctx context.Context, id uuid.UUID, additionalValue string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE customer_contact_channels SET additional_value = $1, updated_at = NOW() WHERE id = $2`,
		additionalValue, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabase)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on success.
func (r *CustomerRepository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabase)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrDatabase)
	}
	return nil
}
