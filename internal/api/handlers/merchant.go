package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lapakkirim/backend/internal/api/dto"
	"github.com/lapakkirim/backend/internal/api/middleware"
	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/internal/service"
	"github.com/lapakkirim/backend/pkg/errors"
	"github.com/lapakkirim/backend/pkg/validator"
)

// MerchantHandler handles merchant CRUD.
type MerchantHandler struct {
	merchants *service.MerchantService
	validator *validator.Validator
}

// NewMerchantHandler creates a new MerchantHandler.
func NewMerchantHandler(merchants *service.MerchantService, v *validator.Validator) *MerchantHandler {
	return &MerchantHandler{merchants: merchants, validator: v}
}

// Create handles POST /api/v1/merchants.
func (h *MerchantHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateMerchantRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid request body"))
	}
	if errs := h.validator.Validate(req); errs != nil {
		return sendValidationError(c, errs)
	}

	user := middleware.GetUser(c)
	m, err := h.merchants.Create(c.Context(), service.CreateMerchantInput{
		UserID:       user.ID,
		Name:         req.Name,
		MerchantCode: req.MerchantCode,
	})
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK("merchant created", toMerchantResponse(m)))
}

// List handles GET /api/v1/merchants.
func (h *MerchantHandler) List(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	merchants, err := h.merchants.ListForUser(c.Context(), user.ID)
	if err != nil {
		return sendError(c, err)
	}

	out := make([]*dto.MerchantResponse, 0, len(merchants))
	for _, m := range merchants {
		out = append(out, toMerchantResponse(m))
	}
	return sendOK(c, "", out)
}

// Get handles GET /api/v1/merchants/:merchantID.
func (h *MerchantHandler) Get(c *fiber.Ctx) error {
	m, err := h.merchants.Get(c.Context(), middleware.GetMerchantID(c))
	if err != nil {
		return sendError(c, err)
	}
	return sendOK(c, "", toMerchantResponse(m))
}

// Update handles PUT /api/v1/merchants/:merchantID.
func (h *MerchantHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateMerchantRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid request body"))
	}
	if errs := h.validator.Validate(req); errs != nil {
		return sendValidationError(c, errs)
	}

	merchantID := middleware.GetMerchantID(c)
	m, err := h.merchants.Get(c.Context(), merchantID)
	if err != nil {
		return sendError(c, err)
	}
	m.Name = req.Name
	if err := h.merchants.Update(c.Context(), m); err != nil {
		return sendError(c, err)
	}
	return sendOK(c, "merchant updated", toMerchantResponse(m))
}

// Delete handles DELETE /api/v1/merchants/:merchantID.
func (h *MerchantHandler) Delete(c *fiber.Ctx) error {
	if err := h.merchants.Delete(c.Context(), middleware.GetMerchantID(c)); err != nil {
		return sendError(c, err)
	}
	return sendOK(c, "merchant deleted", nil)
}

func toMerchantResponse(m *repository.Merchant) *dto.MerchantResponse {
	if m == nil {
		return nil
	}
	return &dto.MerchantResponse{
		ID:           m.ID.String(),
		Name:         m.Name,
		MerchantCode: m.MerchantCode,
		CreatedAt:    m.CreatedAt,
	}
}
