package service

import (
	"context"
	"log/slog"
)

// Mailer delivers the raw reset token out-of-band. The HTTP response never
// carries it in production.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email string, rawToken string) error
}

// LogMailer stands in for a real mail provider: it writes the reset token to
// the server log so an operator can hand it to the user.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(_ context.Context, email string, rawToken string) error {
	slog.Info("password reset requested", "email", email, "reset_token", rawToken)
	return nil
}
