// Package routes wires handlers, middleware, and services into the Fiber
// route tree.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lapakkirim/backend/internal/api/handlers"
	"github.com/lapakkirim/backend/internal/api/middleware"
	"github.com/lapakkirim/backend/internal/service"
	"github.com/lapakkirim/backend/pkg/logger"
	"github.com/lapakkirim/backend/pkg/redis"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Merchant     *handlers.MerchantHandler
	Customer     *handlers.CustomerHandler
	Invoice      *handlers.InvoiceHandler
	Schedule     *handlers.ScheduleHandler
	Verification *handlers.VerificationHandler
	Telegram     *handlers.TelegramHandler
}

// Config holds everything Setup needs to build the route tree.
type Config struct {
	Log             *logger.Logger
	RateLimiter     *redis.RateLimiter
	AuthService     *service.AuthService
	MerchantService *service.MerchantService
	ScheduleService *service.ScheduleService
	Handlers        *Handlers
}

// Setup mounts every route on app.
func Setup(app *fiber.App, cfg *Config) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	// Browser-facing verification landing page, not under /api/v1.
	app.Get("/verify", cfg.Handlers.Verification.Land)

	// Telegram webhook, secret-gated internally, not under /api/v1.
	app.Post("/webhooks/telegram", cfg.Handlers.Telegram.Webhook)

	app.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Limiter:       cfg.RateLimiter,
		MaxRequests:   100,
		WindowSeconds: 60,
		KeyPrefix:     "global",
	}))

	api := app.Group("/api/v1")
	setupPublicRoutes(api, cfg)

	authMiddleware := middleware.Auth(cfg.AuthService)
	protected := api.Group("", authMiddleware)
	setupProtectedRoutes(protected, cfg)
}

func setupPublicRoutes(router fiber.Router, cfg *Config) {
	auth := router.Group("/auth")
	auth.Post("/register", cfg.Handlers.Auth.Register)
	auth.Post("/login", cfg.Handlers.Auth.Login)
}

func setupProtectedRoutes(router fiber.Router, cfg *Config) {
	auth := router.Group("/auth")
	auth.Post("/logout", cfg.Handlers.Auth.Logout)
	auth.Get("/me", cfg.Handlers.Auth.Me)

	merchants := router.Group("/merchants")
	merchants.Post("/", cfg.Handlers.Merchant.Create)
	merchants.Get("/", cfg.Handlers.Merchant.List)

	owned := merchants.Group("/:merchantID", middleware.MerchantOwnership(cfg.MerchantService, "merchantID"))
	owned.Get("/", cfg.Handlers.Merchant.Get)
	owned.Put("/", cfg.Handlers.Merchant.Update)
	owned.Delete("/", cfg.Handlers.Merchant.Delete)
	owned.Put("/set-schedule", cfg.Handlers.Schedule.SetGenericSchedule)

	customers := owned.Group("/customers")
	customers.Post("/", cfg.Handlers.Customer.Create)
	customers.Get("/", cfg.Handlers.Customer.List)
	customers.Get("/:customerID", cfg.Handlers.Customer.Get)
	customers.Delete("/:customerID", cfg.Handlers.Customer.Delete)

	invoices := owned.Group("/invoices")
	invoices.Post("/", cfg.Handlers.Invoice.Create)
	invoices.Get("/", cfg.Handlers.Invoice.List)
	invoices.Get("/:invoiceID", cfg.Handlers.Invoice.Get)
	invoices.Put("/:invoiceID/set-schedule", cfg.Handlers.Schedule.SetInvoiceSchedule)

	schedules := router.Group("/schedules")
	scheduleOwned := schedules.Group("/:scheduleID", middleware.ScheduleOwnership(cfg.ScheduleService, cfg.MerchantService, "scheduleID"))
	scheduleOwned.Get("/", cfg.Handlers.Schedule.Get)
	scheduleOwned.Delete("/", cfg.Handlers.Schedule.Cancel)
}
