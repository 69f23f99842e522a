package mailer

import (
	"context"
	"log/slog"

	"inkwell/internal/middleware"
)

// LogMailer writes outbound mail to the structured log instead of sending
// it. Default backend for development and tests.
type LogMailer struct{}

// NewLogMailer returns a Mailer that only logs.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendVerificationEmail(ctx context.Context, to string, link string) error {
	middleware.Logger.InfoContext(ctx, "verification email",
		slog.String("to", to),
		slog.String("link", link),
	)
	middleware.EmailsSent.WithLabelValues("verification", "ok").Inc()
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(ctx context.Context, to string, link string) error {
	middleware.Logger.InfoContext(ctx, "password reset email",
		slog.String("to", to),
		slog.String("link", link),
	)
	middleware.EmailsSent.WithLabelValues("password_reset", "ok").Inc()
	return nil
}
