package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lapakkirim/backend/internal/api/dto"
	"github.com/lapakkirim/backend/pkg/errors"
	"github.com/lapakkirim/backend/pkg/validator"
)

// sendError renders an error through the envelope.
func sendError(c *fiber.Ctx, err error) error {
	return c.Status(errors.GetStatusCode(err)).JSON(dto.Err(err.Error(), nil))
}

// sendValidationError renders field-level validation errors.
func sendValidationError(c *fiber.Ctx, errs []validator.ValidationError) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.Err("validation failed", errs))
}

// sendOK renders a successful envelope.
func sendOK(c *fiber.Ctx, message string, data any) error {
	return c.JSON(dto.OK(message, data))
}
