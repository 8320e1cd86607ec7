package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/internal/service"
	"github.com/lapakkirim/backend/pkg/errors"
)

// Auth validates the bearer access token on every request and stores the
// resolved user in context.
func Auth(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return sendError(c, errors.ErrUnauthorized.WithMessage("missing bearer token"))
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" {
			return sendError(c, errors.ErrUnauthorized.WithMessage("missing bearer token"))
		}

		user, err := auth.Authenticate(c.Context(), token)
		if err != nil {
			return sendError(c, err)
		}

		c.Locals("user", user)
		c.Locals("access_token", token)
		return c.Next()
	}
}

// GetUser retrieves the authenticated user from context.
func GetUser(c *fiber.Ctx) *repository.User {
	if u, ok := c.Locals("user").(*repository.User); ok {
		return u
	}
	return nil
}

// GetAccessToken retrieves the bearer token used for the current request.
func GetAccessToken(c *fiber.Ctx) string {
	if t, ok := c.Locals("access_token").(string); ok {
		return t
	}
	return ""
}

// sendError renders the envelope shape for a failed request.
func sendError(c *fiber.Ctx, err error) error {
	return c.Status(errors.GetStatusCode(err)).JSON(fiber.Map{
		"status":  "error",
		"message": err.Error(),
	})
}
