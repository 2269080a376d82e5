package adapter

import "context"

// Mailer delivers one HTML email. Send is not guaranteed idempotent; the
// win-back flow documents this as a known gap.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
