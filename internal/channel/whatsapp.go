package channel

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lapakkirim/backend/pkg/errors"
)

const whatsappRequestTimeout = 15 * time.Second

// WhatsAppAdapter sends a message through an HTTP gateway keyed by an API
// key header, with the phone number and message as query parameters.
type WhatsAppAdapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewWhatsAppAdapter creates a new WhatsAppAdapter.
func NewWhatsAppAdapter(baseURL, apiKey string) *WhatsAppAdapter {
	return &WhatsAppAdapter{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: whatsappRequestTimeout},
	}
}

// Send posts the message to the configured gateway. additionalValue is unused.
func (a *WhatsAppAdapter) Send(ctx context.Context, number, _, message string) error {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return errors.NewChannelError(NameWhatsApp, number, "invalid base url: "+err.Error())
	}
	q := u.Query()
	q.Set("number", number)
	q.Set("message", message)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return errors.NewChannelError(NameWhatsApp, number, "build request: "+err.Error())
	}
	req.Header.Set("x-api-key", a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return errors.NewChannelError(NameWhatsApp, number, "transport: "+err.Error())
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewChannelError(NameWhatsApp, number, "non-2xx response: "+resp.Status)
	}
	return nil
}
