package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lapakkirim/backend/internal/service"
)

// VerificationHandler serves the HTML landing page hit by verification
// links.
type VerificationHandler struct {
	verifications *service.VerificationService
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(verifications *service.VerificationService) *VerificationHandler {
	return &VerificationHandler{verifications: verifications}
}

var landingMessages = map[string]string{
	"verified":     "Your account has been verified. You're all set.",
	"already_used": "This verification link has already been used.",
	"expired":      "This verification link has expired. Please request a new one.",
	"not_found":    "This verification link is invalid.",
}

// Land handles GET /verify?id=&code=.
func (h *VerificationHandler) Land(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Query("id"))
	if err != nil {
		return h.render(c, "This verification link is invalid.")
	}
	code := c.Query("code")

	result, err := h.verifications.Land(c.Context(), id, code)
	if err != nil {
		return h.render(c, "Something went wrong verifying your account. Please try again later.")
	}

	message, ok := landingMessages[result.Outcome]
	if !ok {
		message = "This verification link is invalid."
	}
	return h.render(c, message)
}

func (h *VerificationHandler) render(c *fiber.Ctx, message string) error {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Verification</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
<h1>%s</h1>
</body>
</html>`, message)
	return c.Type("html").SendString(body)
}
