package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryModel is one row of notification_deliveries. ConsentToken and
// Error are nullable: USDC completions carry no token and successes no error.
type DeliveryModel struct {
	ID            string
	ConsentToken  *string
	Asset         string
	SenderEmail   string
	ReceiverEmail string
	Amount        decimal.Decimal
	Delivered     bool
	Error         *string
	CreatedAt     time.Time
}
