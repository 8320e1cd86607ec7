package redis

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis configuration
type Config struct {
	URL      string
	Password string
	DB       int
}

// NewClient creates a new Redis client
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if cfg.Password != "" {
		opt.Password = cfg.Password
	}
	opt.DB = cfg.DB

	client := redis.NewClient(opt)

	// Verify connection
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// HealthCheck performs a health check on Redis
func HealthCheck(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return client.Ping(ctx).Err()
}

// RateLimiter provides rate limiting functionality for the Admission API.
type RateLimiter struct {
	client *redis.Client
}

// NewRateLimiter creates a new RateLimiter instance
func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow checks if a request is allowed under the rate limit
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, int64, error) {
	now := time.Now().UnixMilli()
	windowStart := now - window.Milliseconds()

	pipe := r.client.Pipeline()

	// Remove old entries
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))

	// Count current requests in window
	countCmd := pipe.ZCard(ctx, key)

	// Set expiry on the key
	pipe.Expire(ctx, key, window)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, 0, 0, err
	}

	count := countCmd.Val()
	resetAt := now + window.Milliseconds()

	// Check limit BEFORE adding request
	if count >= limit {
		return false, 0, resetAt, nil
	}

	// Only add if under limit
	// Use unique member by combining timestamp with random component to handle concurrent requests
	member := fmt.Sprintf("%d-%d", now, rand.Int63())
	if err := r.client.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: member}).Err(); err != nil {
		return false, 0, 0, err
	}

	remaining := limit - count - 1
	if remaining < 0 {
		remaining = 0
	}

	return true, remaining, resetAt, nil
}

// OnboardingStateStore holds the Telegram /connect handshake state, keyed
// by telegram_{chat_id}, restricted to the literal value set {"/connect"}
// for the Telegram onboarding handshake.
type OnboardingStateStore struct {
	client *redis.Client
}

// NewOnboardingStateStore creates a new OnboardingStateStore.
func NewOnboardingStateStore(client *redis.Client) *OnboardingStateStore {
	return &OnboardingStateStore{client: client}
}

const onboardingStateTTL = 24 * time.Hour

func onboardingKey(chatID int64) string {
	return fmt.Sprintf("telegram_%d", chatID)
}

// SetConnecting marks a chat as awaiting a merchant code.
func (s *OnboardingStateStore) SetConnecting(ctx context.Context, chatID int64) error {
	return s.client.Set(ctx, onboardingKey(chatID), "/connect", onboardingStateTTL).Err()
}

// IsConnecting reports whether a chat is currently awaiting a merchant code.
func (s *OnboardingStateStore) IsConnecting(ctx context.Context, chatID int64) (bool, error) {
	val, err := s.client.Get(ctx, onboardingKey(chatID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "/connect", nil
}

// Clear removes a chat's onboarding state.
func (s *OnboardingStateStore) Clear(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, onboardingKey(chatID)).Err()
}
