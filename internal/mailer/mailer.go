// Package mailer sends transactional email for account verification and
// password resets.
package mailer

import (
	"context"
	"fmt"
)

// Mailer is implemented by the SMTP backend and a log-only backend for
// development.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to string, link string) error
	SendPasswordResetEmail(ctx context.Context, to string, link string) error
}

// VerificationLink builds the client-side verification URL for a user/token pair.
func VerificationLink(clientDomain string, userID uint, token string) string {
	return fmt.Sprintf("%s/users/%d/verify/%s", clientDomain, userID, token)
}

// PasswordResetLink builds the client-side reset URL for a user/token pair.
func PasswordResetLink(clientDomain string, userID uint, token string) string {
	return fmt.Sprintf("%s/reset-password/%d/%s", clientDomain, userID, token)
}

const verificationBody = `<p>Welcome! Click the link below to verify your email address:</p>
<p><a href="%s">Verify Email</a></p>
<p>If you did not create an account, you can ignore this message.</p>`

const passwordResetBody = `<p>Click the link below to reset your password:</p>
<p><a href="%s">Reset Password</a></p>
<p>If you did not request a password reset, you can ignore this message.</p>`
