// Package payment implements the payment-link client: a single
// createInvoice operation against Xendit's invoice API, wrapping the
// response as an opaque payload that only promises an invoice_url accessor.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lapakkirim/backend/pkg/errors"
)

const requestTimeout = 15 * time.Second

// Client is a Xendit invoice API client bound to one secret key.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a new Xendit Client.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Payload is the opaque response from Xendit's invoice-creation endpoint.
// Only InvoiceURL is a contractual accessor; everything else is preserved
// verbatim for storage and potential downstream inspection.
type Payload struct {
	raw json.RawMessage
}

// InvoiceURL surfaces the payment link from the opaque payload.
func (p *Payload) InvoiceURL() string {
	var fields struct {
		InvoiceURL string `json:"invoice_url"`
	}
	if err := json.Unmarshal(p.raw, &fields); err != nil {
		return ""
	}
	return fields.InvoiceURL
}

// MarshalJSON returns the raw payload as stored in the invoice row.
func (p *Payload) MarshalJSON() ([]byte, error) {
	if p == nil || p.raw == nil {
		return []byte("null"), nil
	}
	return p.raw, nil
}

// UnmarshalJSON restores a Payload from a previously stored raw payload.
func (p *Payload) UnmarshalJSON(data []byte) error {
	p.raw = append([]byte(nil), data...)
	return nil
}

type createInvoiceRequest struct {
	ExternalID  string `json:"external_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// CreateInvoice requests a payment link for an amount (in the smallest
// currency unit), idempotent on external_id from Xendit's side.
func (c *Client) CreateInvoice(ctx context.Context, externalID string, amount int64, description string) (*Payload, error) {
	body, err := json.Marshal(createInvoiceRequest{ExternalID: externalID, Amount: amount, Description: description})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrUpstreamPayment)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/invoices", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrUpstreamPayment)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.secretKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ErrUpstreamPayment.WithMessage(fmt.Sprintf("xendit transport error: %s", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrUpstreamPayment)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.ErrUpstreamPayment.WithMessage(fmt.Sprintf("xendit non-2xx response: %s", resp.Status))
	}

	return &Payload{raw: respBody}, nil
}
