// Package email defines the outbound mail capability.  Workflows depend
// on the Sender interface only; the SMTP implementation is chosen once
// at process start and injected, so business logic never branches on
// runtime mode.
package email

import (
	"context"
	"fmt"
	"net/smtp"
)

// Sender delivers a single message.  Implementations make exactly one
// attempt; callers decide what a failed send means (for registration it
// means rolling back the account).
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends mail through a plain SMTP relay such as a Mailtrap
// sandbox.
type SMTPSender struct {
	Addr     string // host:port
	Host     string // host only, for AUTH
	Username string
	Password string
	From     string
}

func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		Addr:     host + ":" + port,
		Host:     host,
		Username: username,
		Password: password,
		From:     from,
	}
}

// Send delivers one message.  The context is accepted for interface
// symmetry; net/smtp has no native cancellation, and sends are expected
// to be a single possibly-slow attempt.
func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"utf-8\"\r\n\r\n%s\r\n",
		s.From, to, subject, body)

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	return smtp.SendMail(s.Addr, auth, s.From, []string{to}, []byte(msg))
}
