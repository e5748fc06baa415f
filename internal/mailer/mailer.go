package mailer

import (
	"context"
	"log"
)

// Mailer delivers transactional mail. Actual delivery is an external concern;
// the auth service only hands off the reset token.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

// LogMailer writes mail to the process log instead of sending it. Development
// stand-in until an SMTP or provider integration is configured.
type LogMailer struct{}

// SendPasswordReset logs the reset token for the given recipient.
func (LogMailer) SendPasswordReset(_ context.Context, to, token string) error {
	log.Printf("password reset requested for %s, token: %s", to, token)
	return nil
}
