// Package notify renders and sends the "you received funds" email.
package notify

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/config"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

var transferReceived = template.Must(template.ParseFS(templateFS, "templates/transfer_received.html"))

const appURL = "https://alpha.banza.xyz"

type transferView struct {
	Sender string
	Amount string
	Asset  string
	AppURL string
	Year   int
}

type Notifier struct {
	mailer  application.Mailer
	journal application.DeliveryJournal
	from    string
	subject string
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Notifier)

func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Notifier) { n.metrics = m }
}

func NewNotifier(cfg config.MailerConfig, mailer application.Mailer, journal application.DeliveryJournal, logger *slog.Logger, opts ...Option) *Notifier {
	if journal == nil {
		journal = NopJournal{}
	}
	n := &Notifier{
		mailer:  mailer,
		journal: journal,
		from:    cfg.FromEmail,
		subject: cfg.Subject,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

var _ application.Notifier = (*Notifier)(nil)

// NotifyTransfer makes exactly one delivery attempt. A nil return means the
// transport acknowledged the message.
func (n *Notifier) NotifyTransfer(ctx context.Context, notice domain.TransferNotice) error {
	err := n.send(ctx, notice)
	n.metrics.ObserveNotification(assetLabel(notice.Asset), err == nil)

	delivery := application.Delivery{
		ConsentToken:  string(notice.ConsentToken),
		Asset:         assetLabel(notice.Asset),
		SenderEmail:   notice.SenderEmail,
		ReceiverEmail: notice.ReceiverEmail,
		Amount:        notice.Amount,
		Delivered:     err == nil,
		AttemptedAt:   n.now().UTC(),
	}
	if err != nil {
		delivery.Error = err.Error()
	}
	if jerr := n.journal.Record(ctx, delivery); jerr != nil {
		n.logger.Warn("failed to record delivery attempt",
			"receiver", notice.ReceiverEmail,
			"error", jerr,
		)
	}

	return err
}

func (n *Notifier) send(ctx context.Context, notice domain.TransferNotice) error {
	if n.from == "" {
		n.logger.Error("email not sent, source address is not configured",
			"receiver", notice.ReceiverEmail,
		)
		return application.ErrMailerNotConfigured
	}

	body, err := n.render(notice)
	if err != nil {
		return err
	}

	err = n.mailer.Send(ctx, application.MailMessage{
		From:    n.from,
		To:      notice.ReceiverEmail,
		Subject: n.subject,
		HTML:    body,
	})
	if err != nil {
		if errors.Is(err, application.ErrNotDelivered) {
			n.logger.Warn("mail transport did not acknowledge delivery",
				"receiver", notice.ReceiverEmail,
			)
		} else {
			n.logger.Error("failed to send email",
				"receiver", notice.ReceiverEmail,
				"error", err,
			)
		}
		return err
	}

	n.logger.Info("email successfully sent about amount transfer",
		"receiver", notice.ReceiverEmail,
		"amount", notice.Amount,
		"asset", assetLabel(notice.Asset),
	)
	return nil
}

func (n *Notifier) render(notice domain.TransferNotice) (string, error) {
	var buf bytes.Buffer
	err := transferReceived.Execute(&buf, transferView{
		Sender: notice.SenderEmail,
		Amount: notice.Amount,
		Asset:  assetLabel(notice.Asset),
		AppURL: appURL,
		Year:   n.now().Year(),
	})
	if err != nil {
		return "", fmt.Errorf("render transfer email: %w", err)
	}
	return buf.String(), nil
}

// records without an asset predate multi-asset support and are always BCN
func assetLabel(asset string) string {
	if asset == "" {
		return domain.SymbolBCN
	}
	return asset
}

// NopJournal discards deliveries. Used when no database is configured.
type NopJournal struct{}

func (NopJournal) Record(context.Context, application.Delivery) error { return nil }
