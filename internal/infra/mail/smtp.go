// File: internal/infra/mail/smtp.go
package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"subscription-retention-service/internal/config"
	"subscription-retention-service/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*SMTPMailer)(nil)

// SMTPMailer sends HTML mail through the store's SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *zerolog.Logger
}

func NewSMTPMailer(cfg *config.SMTPConfig, logger *zerolog.Logger) *SMTPMailer {
	mailLog := logger.With().Str("component", "SMTPMailer").Logger()
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		log:    &mailLog,
	}
}

// Send delivers one message. gomail dials per send; for the win-back volume
// of a single store that is fine.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	m.log.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}
