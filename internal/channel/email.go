package channel

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/lapakkirim/backend/pkg/errors"
)

// EmailAdapter sends plain-text mail through a static-credential SMTP relay,
// with the sender fixed to a verification-branded address.
//
// No ecosystem SMTP client in the example pack fit this surface (the pack's
// mail-adjacent dependencies are all chat-bot or push-notification
// libraries); net/smtp's single Dial/SendMail round trip is the whole of
// what this adapter needs, so it is used directly rather than pulled in
// through a wrapper library.
type EmailAdapter struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewEmailAdapter creates a new EmailAdapter.
func NewEmailAdapter(host, port, username, password, from string) *EmailAdapter {
	return &EmailAdapter{host: host, port: port, username: username, password: password, from: from}
}

// Send mails body to the given address. additionalValue is unused.
func (a *EmailAdapter) Send(ctx context.Context, address, _, body string) error {
	addr := fmt.Sprintf("%s:%s", a.host, a.port)
	auth := smtp.PlainAuth("", a.username, a.password, a.host)

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: You have a new message\r\n\r\n%s\r\n", a.from, address, body))

	if err := smtp.SendMail(addr, auth, a.from, []string{address}, msg); err != nil {
		return errors.NewChannelError(NameEmail, address, err.Error())
	}
	return nil
}
