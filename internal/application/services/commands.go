package services

import (
	"encoding/json"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
)

type MintCommand struct {
	Email  string
	Amount domain.Amount
}

type TransferCommand struct {
	FromEmail string
	ToEmail   string
	Amount    domain.Amount
}

type ConfirmTransferCommand struct {
	ConsentToken string
}

type CompleteUSDCTransferCommand struct {
	TypedMessage json.RawMessage
	Signature    string
	FromEmail    string
	ToEmail      string
	Amount       domain.Amount
}

// ConfirmResult reports whether the receiver was emailed. A false value is
// an outcome, not an error: the token stays registered for another try.
type ConfirmResult struct {
	Success bool `json:"success"`
}
