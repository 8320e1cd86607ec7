// Package telegram is a thin HTTP client over the Telegram Bot API: no SDK,
// just JSON-over-HTTP the way the rest of this codebase talks to external
// services.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const requestTimeout = 30 * time.Second

// Client is a Telegram Bot API client bound to one bot token.
type Client struct {
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewClient creates a new Telegram Bot API client. baseURL is configurable
// so tests can point it at a local fake server.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger:  logger,
		baseURL: baseURL + "/bot" + token,
	}
}

// SendMessageRequest is the payload for the sendMessage method.
type SendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// SentMessage is the subset of the Telegram Message object this service cares about.
type SentMessage struct {
	MessageID int64 `json:"message_id"`
}

// APIResponse is the Telegram Bot API's envelope.
type APIResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Parameters  *ResponseParams `json:"parameters,omitempty"`
}

// ResponseParams carries Telegram's retry_after hint on rate limiting.
type ResponseParams struct {
	RetryAfter int `json:"retry_after,omitempty"`
}

// User is the Telegram Bot API User object (bot identity).
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// SendMessage sends a text message to a chat. Required contract for C1's
// Telegram adapter: the caller supplies a resolved chat_id (the onboarding
// "additional_value"), never a username.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	data, err := json.Marshal(SendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return 0, fmt.Errorf("marshal sendMessage request: %w", err)
	}

	resp, err := c.doRequest(ctx, "sendMessage", data)
	if err != nil {
		return 0, err
	}

	if !resp.OK {
		return 0, fmt.Errorf("telegram API error: %s (code: %d)", resp.Description, resp.ErrorCode)
	}

	var msg SentMessage
	if err := json.Unmarshal(resp.Result, &msg); err != nil {
		return 0, fmt.Errorf("parse sendMessage response: %w", err)
	}

	return msg.MessageID, nil
}

// SetWebhookRequest is the payload for the setWebhook method.
type SetWebhookRequest struct {
	URL         string `json:"url"`
	SecretToken string `json:"secret_token,omitempty"`
}

// SetWebhook registers the bot's webhook URL, gated by the configured
// secret token. Neither binary under cmd/ calls it.
func (c *Client) SetWebhook(ctx context.Context, url, secretToken string) error {
	data, err := json.Marshal(SetWebhookRequest{URL: url, SecretToken: secretToken})
	if err != nil {
		return fmt.Errorf("marshal setWebhook request: %w", err)
	}

	resp, err := c.doRequest(ctx, "setWebhook", data)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("telegram API error: %s (code: %d)", resp.Description, resp.ErrorCode)
	}
	return nil
}

// GetMe returns information about the bot, used at startup to verify the token.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	resp, err := c.doRequest(ctx, "getMe", nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("telegram API error: %s", resp.Description)
	}

	var user User
	if err := json.Unmarshal(resp.Result, &user); err != nil {
		return nil, fmt.Errorf("parse getMe response: %w", err)
	}
	return &user, nil
}

func (c *Client) doRequest(ctx context.Context, method string, body []byte) (*APIResponse, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, method)

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader([]byte("{}"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &apiResp, nil
}
