package domain

import "strings"

// ConsentToken is the opaque handle MetaKeep returns when a transfer is accepted
// but still awaits confirmation. Identity is case-insensitive.
type ConsentToken string

// Key is the normalized form used for registry lookups.
func (t ConsentToken) Key() string {
	return strings.ToLower(string(t))
}

// PendingTransferNotification is what the proxy remembers about a transfer between
// the upstream accepting it and the client confirming it.
type PendingTransferNotification struct {
	SenderEmail   string `json:"senderEmail"`
	ReceiverEmail string `json:"receiverEmail"`
	Amount        string `json:"amount"`
	Asset         string `json:"asset,omitempty"`
}

// TransferNotice is the notifier input, shared by the consent flow and the
// synchronous USDC completion flow.
type TransferNotice struct {
	ConsentToken  ConsentToken
	SenderEmail   string
	ReceiverEmail string
	Amount        string
	Asset         string
}

func (p PendingTransferNotification) Notice(token ConsentToken) TransferNotice {
	return TransferNotice{
		ConsentToken:  token,
		SenderEmail:   p.SenderEmail,
		ReceiverEmail: p.ReceiverEmail,
		Amount:        p.Amount,
		Asset:         p.Asset,
	}
}
