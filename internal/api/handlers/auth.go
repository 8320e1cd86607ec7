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

// AuthHandler handles registration, login, and logout.
type AuthHandler struct {
	auth      *service.AuthService
	validator *validator.Validator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, v *validator.Validator) *AuthHandler {
	return &AuthHandler{auth: auth, validator: v}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid request body"))
	}
	if errs := h.validator.Validate(req); errs != nil {
		return sendValidationError(c, errs)
	}

	u, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK("registered, check your email to verify", toUserResponse(u)))
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, errors.ErrBadRequest.WithMessage("invalid request body"))
	}
	if errs := h.validator.Validate(req); errs != nil {
		return sendValidationError(c, errs)
	}

	u, token, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(dto.Envelope{Status: "ok", Message: "logged in", AccessToken: token, Data: toUserResponse(u)})
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.Context(), middleware.GetAccessToken(c)); err != nil {
		return sendError(c, err)
	}
	return sendOK(c, "logged out", nil)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return sendOK(c, "", toUserResponse(middleware.GetUser(c)))
}

func toUserResponse(u *repository.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:         u.ID.String(),
		Name:       u.Name,
		Email:      u.Email,
		Status:     u.Status,
		VerifiedAt: u.VerifiedAt,
		CreatedAt:  u.CreatedAt,
	}
}
