package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"inkwell/internal/middleware"
)

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPMailer builds an SMTP-backed Mailer.
func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to string, link string) error {
	err := m.send(to, "Verify your email", fmt.Sprintf(verificationBody, link))
	m.count("verification", err)
	return err
}

func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to string, link string) error {
	err := m.send(to, "Reset your password", fmt.Sprintf(passwordResetBody, link))
	m.count("password_reset", err)
	return err
}

func (m *SMTPMailer) count(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	middleware.EmailsSent.WithLabelValues(kind, outcome).Inc()
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	var msg strings.Builder
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
