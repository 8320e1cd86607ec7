package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lapakkirim/backend/internal/payment"
	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/pkg/errors"
)

// InvoiceService handles invoice creation.
type InvoiceService struct {
	invoices *repository.InvoiceRepository
	payments *payment.Client
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(invoices *repository.InvoiceRepository, payments *payment.Client) *InvoiceService {
	return &InvoiceService{invoices: invoices, payments: payments}
}

// InvoiceItemInput is one line item supplied at invoice creation.
type InvoiceItemInput struct {
	Description string
	Quantity    int
	Price       int64
	Tax         float64
	Discount    float64
}

// CreateInvoiceInput groups the fields needed to create an invoice.
type CreateInvoiceInput struct {
	MerchantID  uuid.UUID
	CustomerID  uuid.UUID
	TaxRate     int64
	Title       string
	Description string
	CreatedBy   uuid.UUID
	Items       []InvoiceItemInput
}

// Create inserts an invoice (and its items) and synchronously requests a
// payment link from the provider. amount is the sum of quantity*price across
// the posted items, never a caller-supplied figure; tax_amount and
// total_amount follow from it: tax_amount = floor(amount * tax_rate / 100),
// total = amount + tax.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*repository.Invoice, error) {
	now := time.Now()

	var amount int64
	for _, item := range in.Items {
		amount += int64(item.Quantity) * item.Price
	}
	taxAmount := int64(math.Floor(float64(amount) * float64(in.TaxRate) / 100))
	totalAmount := amount + taxAmount

	inv := &repository.Invoice{
		MerchantID:    in.MerchantID,
		CustomerID:    in.CustomerID,
		InvoiceNumber: repository.NewInvoiceNumber(in.CreatedBy, now),
		Amount:        amount,
		TaxRate:       in.TaxRate,
		TaxAmount:     taxAmount,
		TotalAmount:   totalAmount,
		InvoiceDate:   now,
		CreatedBy:     in.CreatedBy,
	}

	err := s.invoices.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.invoices.Create(ctx, tx, inv); err != nil {
			return err
		}
		for _, item := range in.Items {
			row := &repository.InvoiceItem{
				InvoiceID:   inv.ID,
				Description: item.Description,
				Quantity:    item.Quantity,
				Price:       item.Price,
				Tax:         item.Tax,
				Discount:    item.Discount,
				CreatedBy:   in.CreatedBy,
			}
			if err := s.invoices.CreateItem(ctx, tx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("%s: %s", in.Title, in.Description)
	payload, err := s.payments.CreateInvoice(ctx, inv.InvoiceNumber, inv.TotalAmount, summary)
	if err != nil {
		return nil, err
	}
	if err := s.storePaymentPayload(ctx, inv.ID, payload); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *InvoiceService) storePaymentPayload(ctx context.Context, invoiceID uuid.UUID, payload *payment.Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal)
	}
	return s.invoices.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `UPDATE invoices SET payment_payload = $1, updated_at = NOW() WHERE id = $2`, raw, invoiceID)
		return err
	})
}

// Get retrieves an invoice by ID.
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*repository.Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

// ListByMerchant returns every invoice for a merchant.
func (s *InvoiceService) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*repository.Invoice, error) {
	return s.invoices.ListByMerchant(ctx, merchantID)
}

// RefreshPaymentLink re-requests a payment link for an invoice and
// overwrites payment_payload; used by the promoter's prepare_invoice step
// (invoice_date is stamped separately by SetInvoiceDate).
func (s *InvoiceService) RefreshPaymentLink(ctx context.Context, inv *repository.Invoice, summary string) (*payment.Payload, error) {
	payload, err := s.payments.CreateInvoice(ctx, inv.InvoiceNumber, inv.TotalAmount, summary)
	if err != nil {
		return nil, err
	}
	if err := s.storePaymentPayload(ctx, inv.ID, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SetInvoiceDate stamps invoice_date, the other half of prepare_invoice.
func (s *InvoiceService) SetInvoiceDate(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.invoices.GetByID(ctx, id) // ensures it exists / is not deleted
	if err != nil {
		return err
	}
	return s.invoices.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `UPDATE invoices SET invoice_date = $1, updated_at = NOW() WHERE id = $2`, at, id)
		return err
	})
}
