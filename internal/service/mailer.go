package service

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/campusworks/review-portal/internal/config"
	"github.com/rs/zerolog/log"
)

// Mailer delivers password reset codes to evaluators.
type Mailer interface {
	SendOTP(to, otp string) error
}

// NewMailer returns an SMTP-backed mailer when SMTP is configured, otherwise
// a console mailer that logs the code. The fallback keeps local development
// working without a mail server.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		log.Warn().Msg("SMTP not configured, OTP codes will be logged to console")
		return &consoleMailer{}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg *config.Config
}

func (m *smtpMailer) SendOTP(to, otp string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.MailFrom)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: Project Review Portal password reset\r\n")
	fmt.Fprintf(&b, "\r\n")
	fmt.Fprintf(&b, "Your one-time password reset code is: %s\r\n\r\n", otp)
	fmt.Fprintf(&b, "The code expires in %s. If you did not request a reset, ignore this email.\r\n", m.cfg.OTPExpiry)

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.MailFrom, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

type consoleMailer struct{}

func (m *consoleMailer) SendOTP(to, otp string) error {
	log.Info().Str("component", "mailer").Str("to", to).Str("otp", otp).Msg("password reset OTP (console fallback)")
	return nil
}
