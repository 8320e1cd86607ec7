package logger

import (
	"context"
	"log/slog"
	"os"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	merchantIDKey contextKey = "merchant_id"
)

// Logger wraps slog.Logger with additional context-aware methods
type Logger struct {
	*slog.Logger
}

// New creates a new Logger instance
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values added as attributes
func (l *Logger) WithContext(ctx context.Context) *Logger {
	logger := l.Logger

	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		logger = logger.With(slog.String("request_id", requestID))
	}

	if userID, ok := ctx.Value(userIDKey).(string); ok {
		logger = logger.With(slog.String("user_id", userID))
	}

	if merchantID, ok := ctx.Value(merchantIDKey).(string); ok {
		logger = logger.With(slog.String("merchant_id", merchantID))
	}

	return &Logger{Logger: logger}
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithUserID adds a user ID to the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithMerchantID adds a merchant ID to the context
func WithMerchantID(ctx context.Context, merchantID string) context.Context {
	return context.WithValue(ctx, merchantIDKey, merchantID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetUserID retrieves the user ID from context
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetMerchantID retrieves the merchant ID from context
func GetMerchantID(ctx context.Context) string {
	if merchantID, ok := ctx.Value(merchantIDKey).(string); ok {
		return merchantID
	}
	return ""
}
