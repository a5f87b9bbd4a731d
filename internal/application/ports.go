package application

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
)

// WalletGateway is the port for the custodial wallet provider.
type WalletGateway interface {
	Balance(ctx context.Context, req BalanceQuery) (json.RawMessage, error)
	Mint(ctx context.Context, req MintOrder) (json.RawMessage, error)
	Transfer(ctx context.Context, req TransferOrder) (*TransferReceipt, error)
	GetWallet(ctx context.Context, email string) (*Wallet, error)
	InvokeLambda(ctx context.Context, req LambdaCall) (json.RawMessage, error)
	ReadLambda(ctx context.Context, req LambdaCall) (json.RawMessage, error)
}

// ConsentRegistry is the port for the pending transfer store.
type ConsentRegistry interface {
	Register(token domain.ConsentToken, record domain.PendingTransferNotification) bool
	Exists(token domain.ConsentToken) bool
	Fetch(token domain.ConsentToken) (domain.PendingTransferNotification, bool)
	Claim(token domain.ConsentToken) (domain.PendingTransferNotification, error)
	Unclaim(token domain.ConsentToken) bool
	Release(token domain.ConsentToken) bool
	Len() int
}

// Notifier sends the "you received funds" email for a completed transfer.
type Notifier interface {
	NotifyTransfer(ctx context.Context, notice domain.TransferNotice) error
}

// Mailer is the port for the outbound mail transport.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

var (
	// ErrMailerNotConfigured means no source address could be resolved.
	ErrMailerNotConfigured = errors.New("mailer source address is not configured")
	// ErrNotDelivered means the transport did not acknowledge the message.
	ErrNotDelivered = errors.New("mail transport did not acknowledge delivery")
)

// DeliveryJournal records every notification attempt for auditing.
type DeliveryJournal interface {
	Record(ctx context.Context, delivery Delivery) error
}

type BalanceQuery struct {
	Email      string
	Currencies []string
}

type MintOrder struct {
	Email    string
	Currency string
	Amount   string
}

type TransferOrder struct {
	FromEmail string
	ToEmail   string
	Currency  string
	Amount    string
}

// TransferReceipt is the provider's answer to a transfer; Body is passed back
// to the client untouched.
type TransferReceipt struct {
	Status       string
	ConsentToken string
	Body         json.RawMessage
}

type Wallet struct {
	EthAddress string
	SolAddress string
	EosAddress string
}

// LambdaCall addresses a function on a deployed contract.
type LambdaCall struct {
	Contract string
	Function string
	Args     []any
	Reason   string
}

type MailMessage struct {
	From    string
	To      string
	Subject string
	HTML    string
}

type Delivery struct {
	ConsentToken  string
	Asset         string
	SenderEmail   string
	ReceiverEmail string
	Amount        string
	Delivered     bool
	Error         string
	AttemptedAt   time.Time
}
