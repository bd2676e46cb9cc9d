// Package mail delivers verification codes to users over SMTP.
package mail

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/lulemo/habitlock/internal/server/models"
)

// Sender delivers a single-use verification code to an email address.
// purpose selects the message wording; ttl is how long the code stays valid.
type Sender interface {
	SendVerificationCode(email, code, purpose string, ttl time.Duration) error
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) SendVerificationCode(email, code, purpose string, ttl time.Duration) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)

	subject, body := verificationMessage(code, purpose, ttl)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending %s code to %s: %w", purpose, email, err)
	}
	return nil
}

func verificationMessage(code, purpose string, ttl time.Duration) (subject, body string) {
	expiry := formatTTL(ttl)
	switch purpose {
	case models.PurposeReset:
		subject = "Reset your password"
		body = fmt.Sprintf(`
			<h3>Password reset requested</h3>
			<p>Your reset code is <strong>%s</strong>. It expires in %s.</p>
			<p>If you did not request this change, you can ignore this email.</p>
		`, code, expiry)
	default:
		subject = "Confirm your email"
		body = fmt.Sprintf(`
			<h3>Welcome!</h3>
			<p>Your verification code is <strong>%s</strong>. It expires in %s.</p>
		`, code, expiry)
	}
	return subject, body
}

func formatTTL(ttl time.Duration) string {
	if minutes := int(ttl.Minutes()); minutes >= 1 {
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	return fmt.Sprintf("%d seconds", int(ttl.Seconds()))
}
