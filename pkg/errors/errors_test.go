package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, GetStatusCode(ErrNotFound))
	assert.Equal(t, http.StatusUnauthorized, GetStatusCode(ErrUnauthorized))
	assert.Equal(t, http.StatusTooManyRequests, GetStatusCode(ErrTooManyRequests))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(fmt.Errorf("plain error")))
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	wrapped := Wrap(cause, ErrDatabase)

	assert.Equal(t, http.StatusInternalServerError, wrapped.StatusCode)
	assert.Contains(t, wrapped.Error(), "database error")
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.ErrorIs(t, wrapped, cause)
}

func TestWithMessage(t *testing.T) {
	custom := ErrNotFound.WithMessage("invoice not found")
	assert.Equal(t, "invoice not found", custom.Error())
	assert.Equal(t, ErrNotFound.StatusCode, custom.StatusCode)
}

func TestIs(t *testing.T) {
	assert.True(t, Is(ErrUserNotFound, ErrUserNotFound))
	assert.False(t, Is(ErrUserNotFound, ErrMerchantNotFound))
}

func TestNewChannelError(t *testing.T) {
	err := NewChannelError("telegram", "12345", "no chat_id bound")

	assert.Equal(t, http.StatusBadGateway, GetStatusCode(err))

	var ce *ChannelError
	require := assert.New(t)
	require.True(As(err, &ce))
	require.Equal("telegram", ce.Channel)
	require.Equal("12345", ce.Value)
}
