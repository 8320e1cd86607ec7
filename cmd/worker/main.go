package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lapakkirim/backend/internal/channel"
	"github.com/lapakkirim/backend/internal/composer"
	"github.com/lapakkirim/backend/internal/dispatcher"
	"github.com/lapakkirim/backend/internal/payment"
	"github.com/lapakkirim/backend/internal/promoter"
	"github.com/lapakkirim/backend/internal/repository"
	"github.com/lapakkirim/backend/internal/service"
	"github.com/lapakkirim/backend/internal/telegram"
	"github.com/lapakkirim/backend/pkg/config"
	"github.com/lapakkirim/backend/pkg/database"
	"github.com/lapakkirim/backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("starting worker",
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

	telegramClient := telegram.NewClient(cfg.Telegram.BaseURL, cfg.Telegram.BotToken, log.Logger)

	botUser, err := telegramClient.GetMe(ctx)
	if err != nil {
		log.Error("failed to verify telegram bot", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("telegram bot verified",
		slog.String("username", botUser.Username),
		slog.Int64("bot_id", botUser.ID),
	)

	schedules := repository.NewScheduleRepository(pool)
	queue := repository.NewQueueRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	invoiceRepo := repository.NewInvoiceRepository(pool)

	customerService := service.NewCustomerService(customerRepo)
	paymentClient := payment.NewClient(cfg.Xendit.BaseURL, cfg.Xendit.SecretKey)
	invoiceService := service.NewInvoiceService(invoiceRepo, paymentClient)

	channels := channel.NewRegistry(
		channel.NewWhatsAppAdapter(cfg.WhatsApp.BaseURL, cfg.WhatsApp.APIKey),
		channel.NewEmailAdapter(cfg.Email.SMTPHost, cfg.Email.SMTPPort, "apikey", cfg.Email.SendgridAPIKey, cfg.Email.FromAddress),
		channel.NewTelegramAdapter(telegramClient),
	)
	comp := composer.New()

	prom := promoter.New(schedules, queue, invoiceService, log.Logger)

	disp, err := dispatcher.New(schedules, queue, customerService, invoiceService, channels, comp, log.Logger, cfg.Scheduler.CronExpr)
	if err != nil {
		log.Error("failed to build dispatcher", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go prom.Run(ctx)
	go disp.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"worker"}`))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if _, err := telegramClient.GetMe(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready", "reason": "telegram not reachable"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: mux,
	}

	go func() {
		log.Info("health server starting", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	log.Info("worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down worker...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	prom.Stop()
	disp.Stop()

	log.Info("worker stopped gracefully")
}
