package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lapakkirim/backend/internal/api/handlers"
	"github.com/lapakkirim/backend/internal/api/middleware"
	"github.com/lapakkirim/backend/internal/api/routes"
	"github.com/lapakkirim/backend/internal/channel"
	"github.com/lapakkirim/backend/internal/onboarding"
	"github.com/lapakkirim/backend/internal/payment"
	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/internal/service"
	"github.com/lapakkirim/backend/internal/telegram"
	"github.com/lapakkirim/backend/pkg/config"
	"github.com/lapakkirim/backend/pkg/database"
	"github.com/lapakkirim/backend/pkg/logger"
	"github.com/lapakkirim/backend/pkg/redis"
	"github.com/lapakkirim/backend/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("starting api",
		slog.String("env", cfg.Server.Env),
		slog.String("port", cfg.Server.Port),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, database.PostgresConfig{
		URL:             cfg.Database.URL,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	log.Info("connected to PostgreSQL")

	redisClient, err := redis.NewClient(ctx, redis.Config{URL: cfg.Redis.URL})
	if err != nil {
		log.Error("failed to connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info("connected to Redis")

	v := validator.New()

	users := repository.NewUserRepository(pool)
	tokens := repository.NewTokenRepository(pool)
	merchants := repository.NewMerchantRepository(pool)
	customers := repository.NewCustomerRepository(pool)
	invoices := repository.NewInvoiceRepository(pool)
	schedules := repository.NewScheduleRepository(pool)
	queue := repository.NewQueueRepository(pool)
	verifications := repository.NewVerificationRepository(pool)

	telegramClient := telegram.NewClient(cfg.Telegram.BaseURL, cfg.Telegram.BotToken, log.Logger)

	channels := channel.NewRegistry(
		channel.NewWhatsAppAdapter(cfg.WhatsApp.BaseURL, cfg.WhatsApp.APIKey),
		channel.NewEmailAdapter(cfg.Email.SMTPHost, cfg.Email.SMTPPort, "apikey", cfg.Email.SendgridAPIKey, cfg.Email.FromAddress),
		channel.NewTelegramAdapter(telegramClient),
	)

	verificationService := service.NewVerificationService(verifications, users, customers, channels, cfg.Server.PublicBaseURL)
	authService := service.NewAuthService(users, tokens, verificationService, cfg.AppKey)
	merchantService := service.NewMerchantService(merchants)
	customerService := service.NewCustomerService(customers)
	paymentClient := payment.NewClient(cfg.Xendit.BaseURL, cfg.Xendit.SecretKey)
	invoiceService := service.NewInvoiceService(invoices, paymentClient)
	scheduleService := service.NewScheduleService(schedules, queue, customers, merchants)

	onboardingHandler := onboarding.New(
		telegramClient,
		redis.NewOnboardingStateStore(redisClient),
		merchantService,
		customerService,
		verificationService,
		log.Logger,
	)

	h := &routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, v),
		Merchant:     handlers.NewMerchantHandler(merchantService, v),
		Customer:     handlers.NewCustomerHandler(customerService, v),
		Invoice:      handlers.NewInvoiceHandler(invoiceService, v),
		Schedule:     handlers.NewScheduleHandler(scheduleService, v),
		Verification: handlers.NewVerificationHandler(verificationService),
		Telegram:     handlers.NewTelegramHandler(onboardingHandler, cfg.Telegram.SecretToken),
	}

	rateLimiter := redis.NewRateLimiter(redisClient)

	app := fiber.New(fiber.Config{
		AppName:               "lapakkirim API",
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: cfg.IsProduction(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logging(middleware.LoggingConfig{
		Logger:        log,
		SkipPaths:     []string{"/health"},
		SlowThreshold: 500 * time.Millisecond,
	}))
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool { return !cfg.IsProduction() },
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		AllowCredentials: true,
	}))

	routes.Setup(app, &routes.Config{
		Log:             log,
		RateLimiter:     rateLimiter,
		AuthService:     authService,
		MerchantService: merchantService,
		ScheduleService: scheduleService,
		Handlers:        h,
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down server...")
		cancel()

		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Error("server shutdown error", slog.String("error", err.Error()))
		}
	}()

	log.Info("server starting", slog.String("addr", ":"+cfg.Server.Port))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
