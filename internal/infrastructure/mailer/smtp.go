package mailer

import (
	"context"
	"fmt"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/config"
	"github.com/wneessen/go-mail"
)

// SMTPMailer delivers messages through an authenticated SMTP relay.
// A new connection is opened per message.
type SMTPMailer struct {
	cfg config.MailerConfig
}

func NewSMTPMailer(cfg config.MailerConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

var _ application.Mailer = (*SMTPMailer)(nil)

func (m *SMTPMailer) Send(ctx context.Context, msg application.MailMessage) error {
	message := mail.NewMsg()
	if err := message.From(msg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := message.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextHTML, msg.HTML)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("error creating smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("error sending mail to %s: %w", msg.To, err)
	}

	if !message.IsDelivered() {
		return application.ErrNotDelivered
	}
	return nil
}
