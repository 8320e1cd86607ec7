package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lapakkirim/backend/pkg/errors"
)

// Invoice represents a row in the invoices table. Amount fields are
// stored in the smallest currency unit (integer, no floating point) to keep
// tax_amount = floor(amount * tax_rate / 100) exact.
type Invoice struct {
	ID            uuid.UUID
	MerchantID    uuid.UUID
	CustomerID    uuid.UUID
	InvoiceNumber string
	Amount        int64
	TaxRate       int64
	TaxAmount     int64
	TotalAmount   int64
	InvoiceDate   time.Time
	CreatedBy     uuid.UUID
	PaymentPayload []byte // opaque provider response; see payment.Payload
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// InvoiceItem represents a line item on an invoice.
type InvoiceItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Quantity    int
	Price       int64
	Tax         float64
	Discount    float64
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// InvoiceRepository handles invoice and invoice-item database operations.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

const invoiceColumns = `id, merchant_id, customer_id, invoice_number, amount, tax_rate, tax_amount, total_amount, invoice_date, created_by, payment_payload, created_at, updated_at, deleted_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.MerchantID, &inv.CustomerID, &inv.InvoiceNumber, &inv.Amount, &inv.TaxRate,
		&inv.TaxAmount, &inv.TotalAmount, &inv.InvoiceDate, &inv.CreatedBy, &inv.PaymentPayload,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.DeletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrInvoiceNotFound
		}
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	return &inv, nil
}

// NewInvoiceNumber builds "INVC-<creator_id>-<unix_seconds>".
func NewInvoiceNumber(creatorID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("INVC-%s-%d", creatorID.String(), at.Unix())
}

// GetByID retrieves a non-deleted invoice by ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND deleted_at IS NULL`
	return scanInvoice(r.pool.QueryRow(ctx, query, id))
}

// ListByMerchant returns every non-deleted invoice for a merchant.
func (r *InvoiceRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE merchant_id = $1 AND deleted_at IS NULL ORDER BY invoice_date DESC`
	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	defer rows.Close()

	var out []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Create inserts an invoice row inside the caller's transaction; amount/tax
// fields must already satisfy the entity invariants.
func (r *InvoiceRepository) Create(ctx context.Context, tx pgx.Tx, inv *Invoice) error {
	query := `
		INSERT INTO invoices (id, merchant_id, customer_id, invoice_number, amount, tax_rate, tax_amount,
		                       total_amount, invoice_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	return tx.QueryRow(ctx, query, inv.ID, inv.MerchantID, inv.CustomerID, inv.InvoiceNumber, inv.Amount,
		inv.TaxRate, inv.TaxAmount, inv.TotalAmount, inv.InvoiceDate, inv.CreatedBy).
		Scan(&inv.CreatedAt, &inv.UpdatedAt)
}

// CreateItem inserts a line item tied to an invoice, inside the caller's transaction.
func (r *InvoiceRepository) CreateItem(ctx context.Context, tx pgx.Tx, item *InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, description, quantity, price, tax, discount, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return tx.QueryRow(ctx, query, item.ID, item.InvoiceID, item.Description, item.Quantity, item.Price,
		item.Tax, item.Discount, item.CreatedBy).
		Scan(&item.CreatedAt, &item.UpdatedAt)
}

// ListItems returns every non-deleted line item for an invoice.
func (r *InvoiceRepository) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]*InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, description, quantity, price, tax, discount, created_by, created_at, updated_at, deleted_at
		FROM invoice_items
		WHERE invoice_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase)
	}
	defer rows.Close()

	var out []*InvoiceItem
	for rows.Next() {
		var item InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.Quantity, &item.Price, &item.Tax,
			&item.Discount, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt, &item.DeletedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrDatabase)
		}
		out = append(out, &item)
	}
	return out, rows.Err()
}

// WithTx runs fn inside a transaction, committing on success.
func (r *InvoiceRepository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
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
