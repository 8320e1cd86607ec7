package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lapakkirim/backend/internal/api/dto"
	"github.com/lapakkirim/backend/internal/api/middleware"
	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/internal/service"
	"github.com/lapakkirim/backend/pkg/errors"
	"github.com/lapakkirim/backend/pkg/validator"
)

// CustomerHandler handles customer CRUD.
type CustomerHandler struct {
	customers *service.CustomerService
	validator *validator.Validator
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customers *service.CustomerService, v *validator.Validator) *CustomerHandler {
	return &CustomerHandler{customers: customers, validator: v}
}

// Create handles POST /api/v1/merchants/:merchantID/customers.
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid request body"))
	}
	if errs := h.validator.Validate(req); errs != nil {
		return sendValidationError(c, errs)
	}

	channels := make([]service.ContactChannelInput, 0, len(req.Channels))
	for _, ch := range req.Channels {
		channels = append(channels, service.ContactChannelInput{Channel: ch.Channel, Value: ch.Value})
	}

	cust, err := h.customers.Create(c.Context(), service.CreateCustomerInput{
		MerchantID: middleware.GetMerchantID(c),
		Name:       req.Name,
		Tags:       req.Tags,
		Channels:   channels,
	})
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK("customer created", toCustomerResponse(cust)))
}

// List handles GET /api/v1/merchants/:merchantID/customers.
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	var tags []string
	if tag := c.Query("tag"); tag != "" {
		tags = []string{tag}
	}

	customers, err := h.customers.List(c.Context(), middleware.GetMerchantID(c), tags)
	if err != nil {
		return sendError(c, err)
	}

	out := make([]*dto.CustomerResponse, 0, len(customers))
	for _, cust := range customers {
		out = append(out, toCustomerResponse(cust))
	}
	return sendOK(c, "", out)
}

// Get handles GET /api/v1/merchants/:merchantID/customers/:customerID.
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	customerID, err := uuid.Parse(c.Params("customerID"))
	if err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid customer id"))
	}

	cust, err := h.customers.Get(c.Context(), middleware.GetMerchantID(c), customerID)
	if err != nil {
		return sendError(c, err)
	}
	return sendOK(c, "", toCustomerResponse(cust))
}

// Delete handles DELETE /api/v1/merchants/:merchantID/customers/:customerID.
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	customerID, err := uuid.Parse(c.Params("customerID"))
	if err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid customer id"))
	}

	if err := h.customers.Delete(c.Context(), middleware.GetMerchantID(c), customerID); err != nil {
		return sendError(c, err)
	}
	return sendOK(c, "customer deleted", nil)
}

func toCustomerResponse(cust *repository.Customer) *dto.CustomerResponse {
	if cust == nil {
		return nil
	}
	return &dto.CustomerResponse{
		ID:        cust.ID.String(),
		Name:      cust.Name,
		Tags:      cust.Tags,
		CreatedAt: cust.CreatedAt,
	}
}
