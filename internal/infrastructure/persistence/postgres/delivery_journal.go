package postgres

import (
	"context"
	"fmt"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application"
)

type DeliveryJournal struct {
	db *DB
}

func NewDeliveryJournal(db *DB) *DeliveryJournal {
	return &DeliveryJournal{db: db}
}

var _ application.DeliveryJournal = (*DeliveryJournal)(nil)

func (j *DeliveryJournal) Record(ctx context.Context, d application.Delivery) error {
	m, err := toDBModel(d)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notification_deliveries (
			id, consent_token, asset, sender_email, receiver_email,
			amount, delivered, error, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = j.db.Pool.Exec(ctx, query,
		m.ID, m.ConsentToken, m.Asset, m.SenderEmail, m.ReceiverEmail,
		m.Amount, m.Delivered, m.Error, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}
	return nil
}

// FindByConsentToken lists every attempt made for a token, oldest first.
func (j *DeliveryJournal) FindByConsentToken(ctx context.Context, token string) ([]application.Delivery, error) {
	query := `
		SELECT id, consent_token, asset, sender_email, receiver_email,
		       amount, delivered, error, created_at
		FROM notification_deliveries
		WHERE LOWER(consent_token) = LOWER($1)
		ORDER BY created_at ASC
	`

	rows, err := j.db.Pool.Query(ctx, query, token)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	var out []application.Delivery
	for rows.Next() {
		var m DeliveryModel
		err := rows.Scan(
			&m.ID, &m.ConsentToken, &m.Asset, &m.SenderEmail, &m.ReceiverEmail,
			&m.Amount, &m.Delivered, &m.Error, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		out = append(out, toDelivery(m))
	}
	return out, rows.Err()
}
