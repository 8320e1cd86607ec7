// Package composer builds human-readable message bodies for send_invoice and
// send_reminder jobs. The invoice templates are chosen uniformly
// at random; the RNG is injectable so tests can make that choice deterministic.
package composer

import (
	"fmt"
	"math/rand"
	"time"
)

// invoiceTemplates each carry exactly four "%s" placeholders, filled in
// order with merchant_name, formatted total amount, payment URL, due time.
// Phrasing mirrors the reminder tone used elsewhere in this system.
var invoiceTemplates = []string{
	"%s here, as a reminder, we ask that you please make a payment of %s to avoid any late fees. The payment can be made at the following link: %s. The due date for this payment is %s.",
	"%s here, to avoid incurring late fees, we request that you make a payment of %s as soon as possible. You can easily do so by following this payment link: %s. The deadline for this payment is %s.",
	"%s here, we strongly encourage you to make a payment of %s to avoid late fees. You can make the payment by clicking on the following link: %s. The due date is %s.",
	"%s here, to avoid being charged late fees, we request that you make a payment of %s. You can access the payment link here: %s. The payment is due by %s.",
	"%s here, please make a payment of %s to avoid late fees. You can make the payment at the following link: %s. The due date is %s.",
	"%s here, we request that you make a payment of %s as soon as possible to avoid any late fees. The payment link can be found here: %s. Please note that the payment is due on %s.",
	"%s here, to avoid late fees, we ask that you make a payment of %s. You can make the payment using the following link: %s. The due date is %s.",
	"%s here, as a reminder, a payment of %s is due to avoid late fees. You can make the payment at the following link: %s. The due date is %s.",
	"%s here, we request that you make a payment of %s to avoid any late fees. The payment link is available here: %s. Payment is due by %s.",
	"%s here, to avoid being charged late fees, we ask that you make a payment of %s as soon as possible. The payment link is provided here: %s. Please note that the payment is due on %s.",
}

const reminderTemplate = "%s here, we have a message for you \"%s\", \"%s\"."

// RNG is the pluggable randomness source that makes
// invoice-template selection deterministic under test.
type RNG interface {
	Intn(n int) int
}

// defaultRNG wraps math/rand's package-level source, unseeded as required.
type defaultRNG struct{}

func (defaultRNG) Intn(n int) int { return rand.Intn(n) }

// Composer builds message bodies.
type Composer struct {
	rng RNG
}

// New creates a Composer using the package-level math/rand source.
func New() *Composer {
	return &Composer{rng: defaultRNG{}}
}

// NewWithRNG creates a Composer with an injected RNG, for deterministic tests.
func NewWithRNG(rng RNG) *Composer {
	return &Composer{rng: rng}
}

// InvoiceBody renders a random invoice template. totalAmount is in the
// smallest currency unit; dueAt is typically now+24h.
func (c *Composer) InvoiceBody(merchantName string, totalAmount int64, paymentURL string, dueAt time.Time) string {
	tmpl := invoiceTemplates[c.rng.Intn(len(invoiceTemplates))]
	amount := fmt.Sprintf("Rp%.2f", float64(totalAmount))
	due := dueAt.Format("02/01/2006 - 15:04")
	return fmt.Sprintf(tmpl, merchantName, amount, paymentURL, due)
}

// ReminderBody renders the fixed reminder template. Inputs come entirely
// from job_data; this never queries the database.
func (c *Composer) ReminderBody(merchantName, title, description string) string {
	return fmt.Sprintf(reminderTemplate, merchantName, title, description)
}
