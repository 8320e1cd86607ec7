package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lapakkirim/backend/internal/service"
	"github.com/lapakkirim/backend/pkg/errors"
)

// MerchantOwnership ensures the authenticated user owns the merchant named by
// the paramName route parameter before letting the request through.
func MerchantOwnership(merchants *service.MerchantService, paramName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return sendError(c, errors.ErrUnauthorized)
		}

		merchantID, err := uuid.Parse(c.Params(paramName))
		if err != nil {
			return sendError(c, errors.ErrBadRequest.WithMessage("invalid merchant id"))
		}

		owned, err := merchants.OwnedBy(c.Context(), merchantID, user.ID)
		if err != nil {
			return sendError(c, err)
		}
		if !owned {
			return sendError(c, errors.ErrForbidden)
		}

		c.Locals("merchant_id", merchantID)
		return c.Next()
	}
}

// GetMerchantID retrieves the merchant ID validated by MerchantOwnership.
func GetMerchantID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals("merchant_id").(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// ScheduleOwnership ensures the authenticated user owns the merchant that the
// schedule named by the paramName route parameter belongs to. Unlike
// MerchantOwnership, the merchant id isn't in the path, so it's resolved from
// the schedule's own job_data first.
func ScheduleOwnership(schedules *service.ScheduleService, merchants *service.MerchantService, paramName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return sendError(c, errors.ErrUnauthorized)
		}

		scheduleID, err := uuid.Parse(c.Params(paramName))
		if err != nil {
			return sendError(c, errors.ErrBadRequest.WithMessage("invalid schedule id"))
		}

		merchantID, err := schedules.MerchantIDFor(c.Context(), scheduleID)
		if err != nil {
			return sendError(c, err)
		}

		owned, err := merchants.OwnedBy(c.Context(), merchantID, user.ID)
		if err != nil {
			return sendError(c, err)
		}
		if !owned {
			return sendError(c, errors.ErrForbidden)
		}

		c.Locals("merchant_id", merchantID)
		return c.Next()
	}
}
