package postgres

import (
	"fmt"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// toDBModel: maps a delivery attempt to its journal row
func toDBModel(d application.Delivery) (*DeliveryModel, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid delivery amount %q: %w", d.Amount, err)
	}

	return &DeliveryModel{
		ID:            uuid.NewString(),
		ConsentToken:  nullable(d.ConsentToken),
		Asset:         d.Asset,
		SenderEmail:   d.SenderEmail,
		ReceiverEmail: d.ReceiverEmail,
		Amount:        amount,
		Delivered:     d.Delivered,
		Error:         nullable(d.Error),
		CreatedAt:     d.AttemptedAt,
	}, nil
}

// toDelivery: maps a journal row back for reporting
func toDelivery(m DeliveryModel) application.Delivery {
	d := application.Delivery{
		Asset:         m.Asset,
		SenderEmail:   m.SenderEmail,
		ReceiverEmail: m.ReceiverEmail,
		Amount:        m.Amount.String(),
		Delivered:     m.Delivered,
		AttemptedAt:   m.CreatedAt,
	}
	if m.ConsentToken != nil {
		d.ConsentToken = *m.ConsentToken
	}
	if m.Error != nil {
		d.Error = *m.Error
	}
	return d
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
