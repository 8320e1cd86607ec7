package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lapakkirim/backend/internal/api/dto"
	"github.com/lapakkirim/backend/internal/api/middleware"
	"github.com/lapakkirim/backend/internal/payment"
	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/internal/service"
	"github.com/lapakkirim/backend/pkg/errors"
	"github.com/lapakkirim/backend/pkg/validator"
)

// InvoiceHandler handles invoice creation and listing.
type InvoiceHandler struct {
	invoices  *service.InvoiceService
	validator *validator.Validator
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoices *service.InvoiceService, v *validator.Validator) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, validator: v}
}

// Create handles POST /api/v1/merchants/:merchantID/invoices. Requests a
// payment link synchronously, per the route table.
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid request body"))
	}
	if errs := h.validator.Validate(req); errs != nil {
		return sendValidationError(c, errs)
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid customer id"))
	}

	items := make([]service.InvoiceItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.InvoiceItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Tax:         item.Tax,
			Discount:    item.Discount,
		})
	}

	user := middleware.GetUser(c)
	inv, err := h.invoices.Create(c.Context(), service.CreateInvoiceInput{
		MerchantID:  middleware.GetMerchantID(c),
		CustomerID:  customerID,
		TaxRate:     req.TaxRate,
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   user.ID,
		Items:       items,
	})
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK("invoice created", toInvoiceResponse(inv)))
}

// List handles GET /api/v1/merchants/:merchantID/invoices.
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	invoices, err := h.invoices.ListByMerchant(c.Context(), middleware.GetMerchantID(c))
	if err != nil {
		return sendError(c, err)
	}

	out := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	return sendOK(c, "", out)
}

// Get handles GET /api/v1/merchants/:merchantID/invoices/:invoiceID.
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("invoiceID"))
	if err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid invoice id"))
	}

	inv, err := h.invoices.Get(c.Context(), invoiceID)
	if err != nil {
		return sendError(c, err)
	}
	if inv.MerchantID != middleware.GetMerchantID(c) {
		return sendError(c, errors.ErrNotFound.WithMessage("invoice not found"))
	}
	return sendOK(c, "", toInvoiceResponse(inv))
}

func toInvoiceResponse(inv *repository.Invoice) *dto.InvoiceResponse {
	if inv == nil {
		return nil
	}
	resp := &dto.InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.Amount,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		InvoiceDate:   inv.InvoiceDate,
		CreatedAt:     inv.CreatedAt,
	}
	if len(inv.PaymentPayload) > 0 {
		var payload payment.Payload
		if err := json.Unmarshal(inv.PaymentPayload, &payload); err == nil {
			resp.PaymentURL = payload.InvoiceURL()
		}
	}
	return resp
}
