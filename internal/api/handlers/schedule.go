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

// ScheduleHandler handles set-schedule and cancel operations.
type ScheduleHandler struct {
	schedules *service.ScheduleService
	validator *validator.Validator
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(schedules *service.ScheduleService, v *validator.Validator) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, validator: v}
}

// SetInvoiceSchedule handles PUT …/invoices/:invoiceID/set-schedule.
func (h *ScheduleHandler) SetInvoiceSchedule(c *fiber.Ctx) error {
	var req dto.SetInvoiceScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid request body"))
	}
	if errs := h.validator.Validate(req); errs != nil {
		return sendValidationError(c, errs)
	}

	invoiceID, err := uuid.Parse(c.Params("invoiceID"))
	if err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid invoice id"))
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid customer id"))
	}

	sched, err := h.schedules.SetInvoiceSchedule(c.Context(), service.SetInvoiceScheduleInput{
		MerchantID:         middleware.GetMerchantID(c),
		InvoiceID:          invoiceID,
		CustomerID:         customerID,
		IsRecurring:        req.IsRecurring,
		RepeatIntervalType: req.RepeatIntervalType,
		StartAt:            req.StartAt,
		EndAt:              req.EndAt,
	})
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK("schedule created", toScheduleResponse(sched)))
}

// SetGenericSchedule handles PUT /api/v1/merchants/:merchantID/set-schedule.
func (h *ScheduleHandler) SetGenericSchedule(c *fiber.Ctx) error {
	var req dto.SetGenericScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid request body"))
	}
	if errs := h.validator.Validate(req); errs != nil {
		return sendValidationError(c, errs)
	}

	scheds, err := h.schedules.SetGenericSchedule(c.Context(), service.SetGenericScheduleInput{
		MerchantID:         middleware.GetMerchantID(c),
		JobType:            req.JobType,
		Tag:                req.Tag,
		Title:              req.Title,
		Description:        req.Description,
		IsRecurring:        req.IsRecurring,
		RepeatIntervalType: req.RepeatIntervalType,
		StartAt:            req.StartAt,
		EndAt:              req.EndAt,
	})
	if err != nil {
		return sendError(c, err)
	}

	out := make([]*dto.ScheduleResponse, 0, len(scheds))
	for _, s := range scheds {
		out = append(out, toScheduleResponse(s))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK("schedules created", out))
}

// Get handles GET /api/v1/schedules/:scheduleID.
func (h *ScheduleHandler) Get(c *fiber.Ctx) error {
	scheduleID, err := uuid.Parse(c.Params("scheduleID"))
	if err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid schedule id"))
	}

	sched, err := h.schedules.Get(c.Context(), scheduleID)
	if err != nil {
		return sendError(c, err)
	}
	return sendOK(c, "", toScheduleResponse(sched))
}

// Cancel handles DELETE /api/v1/schedules/:scheduleID.
func (h *ScheduleHandler) Cancel(c *fiber.Ctx) error {
	scheduleID, err := uuid.Parse(c.Params("scheduleID"))
	if err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid schedule id"))
	}

	if err := h.schedules.Cancel(c.Context(), scheduleID); err != nil {
		return sendError(c, err)
	}
	return sendOK(c, "schedule canceled", nil)
}

func toScheduleResponse(s *repository.JobSchedule) *dto.ScheduleResponse {
	if s == nil {
		return nil
	}
	return &dto.ScheduleResponse{
		ID:        s.ID.String(),
		JobType:   s.JobType,
		RunAt:     s.RunAt,
		Status:    s.Status,
		Remaining: s.Remaining,
		CreatedAt: s.CreatedAt,
	}
}
