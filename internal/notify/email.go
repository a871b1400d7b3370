package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"servicepulse/internal/domain"
)

// Mailer delivers one rendered message to a batched recipient list.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer returns nil when no host is configured, matching the
// nil-safe adapter convention used elsewhere.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Host == "" {
		return nil
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if m == nil {
		return fmt.Errorf("mail transport disabled")
	}
	if len(to) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// RenderEmail builds the transactional subject and body for a transition.
func RenderEmail(tr domain.Transition) (subject, body string) {
	svc := tr.Service
	rec := tr.Record

	subject = fmt.Sprintf("%s %s is %s", tr.New.Emoji(), svc.Name, strings.ToUpper(string(tr.New)))

	var b strings.Builder
	fmt.Fprintf(&b, "Service: %s\n", svc.Name)
	fmt.Fprintf(&b, "URL: %s\n", svc.URL())
	fmt.Fprintf(&b, "Status: %s %s → %s %s\n",
		tr.Old.Emoji(), strings.ToUpper(string(tr.Old)),
		tr.New.Emoji(), strings.ToUpper(string(tr.New)))
	fmt.Fprintf(&b, "Category: %s\n", tr.Category)
	fmt.Fprintf(&b, "Response time: %d ms\n", rec.ResponseTimeMS)
	if rec.HTTPStatus != nil {
		fmt.Fprintf(&b, "HTTP status: %d\n", *rec.HTTPStatus)
	}
	if rec.Message != "" {
		fmt.Fprintf(&b, "Detail: %s\n", rec.Message)
	}
	fmt.Fprintf(&b, "Checked at: %s\n", rec.CheckedAt.UTC().Format(time.RFC3339))
	return subject, b.String()
}
