package composer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRNG always returns the same index, making template selection
// deterministic for assertions.
type fixedRNG struct{ n int }

func (f fixedRNG) Intn(int) int { return f.n }

func TestInvoiceBody_PlaceholderOrder(t *testing.T) {
	dueAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := range invoiceTemplates {
		t.Run(strings.TrimSpace(invoiceTemplates[i][:20]), func(t *testing.T) {
			c := NewWithRNG(fixedRNG{n: i})
			body := c.InvoiceBody("Toko Kirim", 15000, "https://pay.example/abc", dueAt)

			require.Contains(t, body, "Toko Kirim")
			require.Contains(t, body, "Rp15000.00")
			require.Contains(t, body, "https://pay.example/abc")
			require.Contains(t, body, "01/08/2026 - 12:00")

			// The payment link must always appear before the due date in the
			// rendered body: a template with the two placeholders swapped
			// would still compile but read as "the due date is <url>".
			assert.Less(t, strings.Index(body, "https://pay.example/abc"), strings.Index(body, "01/08/2026 - 12:00"))
		})
	}
}

func TestReminderBody(t *testing.T) {
	c := New()
	body := c.ReminderBody("Toko Kirim", "Reminder title", "Reminder description")
	assert.Contains(t, body, "Toko Kirim")
	assert.Contains(t, body, "Reminder title")
	assert.Contains(t, body, "Reminder description")
}
