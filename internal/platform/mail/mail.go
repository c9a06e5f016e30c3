// Package mail delivers outbound email. The clinic only sends
// appointment reminders today, but the sender interface is generic so
// handlers and services stay testable with the mock double below.
package mail

import (
	"context"
	"errors"
	"sync"

	gomail "gopkg.in/gomail.v2"
)

// Sender delivers a single message. Implementations must report failure
// to the caller rather than swallowing it; reminder dispatch decides how
// to handle per-message errors.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through an SMTP relay via gomail.
type SMTPSender struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPSender constructs a sender for the given relay. The From
// address falls back to the SMTP username when unset.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// SendEmail sends one HTML message, honouring ctx cancellation before
// dialing (gomail itself has no context support).
func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return s.dialer.DialAndSend(m)
}

// Call records a single delivery attempt made through MockSender.
type Call struct {
	To      string
	Subject string
	Body    string
}

// MockSender is a test double for Sender.
type MockSender struct {
	mu         sync.Mutex
	calls      []Call
	ShouldFail bool
	FailError  string

	// FailFor makes only the listed recipients fail, so batch tests can
	// mix successes and failures.
	FailFor map[string]bool
}

// SendEmail records the call and optionally returns an injected error.
func (m *MockSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{To: to, Subject: subject, Body: body})
	if m.ShouldFail || m.FailFor[to] {
		msg := m.FailError
		if msg == "" {
			msg = "smtp unavailable"
		}
		return errors.New(msg)
	}
	return nil
}

// Calls returns a copy of the recorded delivery attempts.
func (m *MockSender) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}
