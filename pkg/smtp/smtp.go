package smtp

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Sender delivers a single prepared message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Client is a mail client used for verification, reset and notification emails.
type Client struct {
	sender Sender
	from   string
	domain string
}

// NewClient initializes Client. domain is used for Message-ID generation.
func NewClient(sender Sender, from, domain string) *Client {
	return &Client{
		sender: sender,
		from:   from,
		domain: domain,
	}
}

// NewDialer builds a gomail dialer for the given SMTP server.
func NewDialer(host string, port int, username, password string) *gomail.Dialer {
	return gomail.NewDialer(host, port, username, password)
}

// Send delivers a plain text message. It reports delivery failures to the caller.
func (c *Client) Send(to, subject, body string) error {
	msg := gomail.NewMessage()

	msg.SetHeader("Message-ID", generateMessageID(c.domain))
	msg.SetHeader("Date", time.Now().Format(time.RFC1123Z))
	msg.SetHeader("From", c.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := c.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send %q to %s: %w", subject, to, err)
	}
	return nil
}

func generateMessageID(domain string) string {
	uniqueID := uuid.New().String()
	return fmt.Sprintf("<%s@%s>", uniqueID, domain)
}
