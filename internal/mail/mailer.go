package mail

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/syncboard/syncboard/internal/config"
)

// Mailer sends transactional email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendPasswordResetOTP(to, otp string) error
}

// SMTPMailer delivers mail through a configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a mailer from the SMTP section of the config.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	d := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password)
	return &SMTPMailer{dialer: d, from: cfg.SMTP.From}
}

func (m *SMTPMailer) SendPasswordResetOTP(to, otp string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%q <%s>", "SyncBoard Support", m.from))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password Reset OTP - SyncBoard")
	msg.SetBody("text/html", resetOTPBody(otp))
	return m.dialer.DialAndSend(msg)
}

func resetOTPBody(otp string) string {
	return fmt.Sprintf(`
<div style="font-family: 'Inter', sans-serif; max-width: 600px; margin: 0 auto; padding: 40px; border: 1px solid #e2e8f0; border-radius: 24px;">
    <h2 style="color: #6366f1; font-weight: 900; margin-bottom: 24px;">Password Reset Request</h2>
    <p style="color: #475569; font-size: 16px; line-height: 1.6; margin-bottom: 32px;">
        We received a request to reset your password. Use the following 6-digit code to proceed.
        This code is valid for <strong>10 minutes</strong>.
    </p>
    <div style="background: #f8fafc; padding: 24px; border-radius: 16px; text-align: center; margin-bottom: 32px;">
        <span style="font-size: 32px; font-weight: 900; letter-spacing: 0.2em; color: #0f172a;">%s</span>
    </div>
    <p style="color: #94a3b8; font-size: 14px;">
        If you didn't request this, you can safely ignore this email.
    </p>
</div>`, otp)
}

// NopMailer discards mail. Used when SMTP is not configured, e.g. in tests
// and local development.
type NopMailer struct{}

func (NopMailer) SendPasswordResetOTP(to, otp string) error { return nil }
