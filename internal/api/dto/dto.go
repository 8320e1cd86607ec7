// Package dto holds request/response shapes for the Admission API, including
// the response envelope every handler returns through.
package dto

import "time"

// Envelope is the response shape every handler returns:
// {status, message, access_token?, data?, errors?} — callers rely on status
// and data, never on HTTP status code alone.
type Envelope struct {
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	Data        any    `json:"data,omitempty"`
	Errors      any    `json:"errors,omitempty"`
}

func OK(message string, data any) Envelope {
	return Envelope{Status: "ok", Message: message, Data: data}
}

func Err(message string, errs any) Envelope {
	return Envelope{Status: "error", Message: message, Errors: errs}
}

// ============================================
// Auth DTOs
// ============================================

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Status     string     `json:"status"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ============================================
// Merchant DTOs
// ============================================

type CreateMerchantRequest struct {
	Name         string `json:"name" validate:"required"`
	MerchantCode string `json:"merchant_code" validate:"required"`
}

type UpdateMerchantRequest struct {
	Name string `json:"name" validate:"required"`
}

type MerchantResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MerchantCode string    `json:"merchant_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// ============================================
// Customer DTOs
// ============================================

type ContactChannelRequest struct {
	Channel string `json:"channel" validate:"required,contact_channel"`
	Value   string `json:"value" validate:"required"`
}

type CreateCustomerRequest struct {
	Name     string                  `json:"name" validate:"required"`
	Tags     []string                `json:"tags"`
	Channels []ContactChannelRequest `json:"channels" validate:"required,min=1,dive"`
}

type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// ============================================
// Invoice DTOs
// ============================================

type InvoiceItemRequest struct {
	Description string  `json:"description" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	Price       int64   `json:"price" validate:"required,gt=0"`
	Tax         float64 `json:"tax"`
	Discount    float64 `json:"discount"`
}

type CreateInvoiceRequest struct {
	CustomerID  string               `json:"customer_id" validate:"required,uuid4"`
	TaxRate     int64                `json:"tax_rate"`
	Title       string               `json:"title" validate:"required"`
	Description string               `json:"description"`
	Items       []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

type InvoiceResponse struct {
	ID            string    `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	Amount        int64     `json:"amount"`
	TaxRate       int64     `json:"tax_rate"`
	TaxAmount     int64     `json:"tax_amount"`
	TotalAmount   int64     `json:"total_amount"`
	InvoiceDate   time.Time `json:"invoice_date"`
	PaymentURL    string    `json:"payment_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ============================================
// Schedule DTOs
// ============================================

type SetInvoiceScheduleRequest struct {
	CustomerID         string     `json:"customer_id" validate:"required,uuid4"`
	IsRecurring        bool       `json:"is_recurring"`
	RepeatIntervalType string     `json:"repeat_interval_type" validate:"omitempty,repeat_interval_type"`
	StartAt            *time.Time `json:"start_at,omitempty"`
	EndAt              *time.Time `json:"end_at,omitempty"`
}

type SetGenericScheduleRequest struct {
	JobType            string     `json:"job_type" validate:"required,job_type"`
	Tag                string     `json:"tag"`
	Title              string     `json:"title" validate:"required"`
	Description        string     `json:"description"`
	IsRecurring        bool       `json:"is_recurring"`
	RepeatIntervalType string     `json:"repeat_interval_type" validate:"omitempty,repeat_interval_type"`
	StartAt            *time.Time `json:"start_at,omitempty"`
	EndAt              *time.Time `json:"end_at,omitempty"`
}

type ScheduleResponse struct {
	ID        string     `json:"id"`
	JobType   string     `json:"job_type"`
	RunAt     time.Time  `json:"run_at"`
	Status    string     `json:"status"`
	Remaining *int64     `json:"remaining,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
