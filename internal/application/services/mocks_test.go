package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
)

// MockWalletGateway records every call and answers through the Fn hooks,
// falling back to canned success values.
type MockWalletGateway struct {
	mu sync.Mutex

	Wallets map[string]string

	BalanceFn      func(ctx context.Context, req application.BalanceQuery) (json.RawMessage, error)
	MintFn         func(ctx context.Context, req application.MintOrder) (json.RawMessage, error)
	TransferFn     func(ctx context.Context, req application.TransferOrder) (*application.TransferReceipt, error)
	GetWalletFn    func(ctx context.Context, email string) (*application.Wallet, error)
	InvokeLambdaFn func(ctx context.Context, req application.LambdaCall) (json.RawMessage, error)
	ReadLambdaFn   func(ctx context.Context, req application.LambdaCall) (json.RawMessage, error)

	BalanceCalls []application.BalanceQuery
	MintCalls    []application.MintOrder
	Transfers    []application.TransferOrder
	WalletCalls  []string
	Invocations  []application.LambdaCall
	Reads        []application.LambdaCall
}

func NewMockWalletGateway() *MockWalletGateway {
	return &MockWalletGateway{Wallets: map[string]string{}}
}

func (m *MockWalletGateway) Balance(ctx context.Context, req application.BalanceQuery) (json.RawMessage, error) {
	m.mu.Lock()
	m.BalanceCalls = append(m.BalanceCalls, req)
	m.mu.Unlock()
	if m.BalanceFn != nil {
		return m.BalanceFn(ctx, req)
	}
	return json.RawMessage(`{"status":"SUCCESS","balances":[]}`), nil
}

func (m *MockWalletGateway) Mint(ctx context.Context, req application.MintOrder) (json.RawMessage, error) {
	m.mu.Lock()
	m.MintCalls = append(m.MintCalls, req)
	m.mu.Unlock()
	if m.MintFn != nil {
		return m.MintFn(ctx, req)
	}
	return json.RawMessage(`{"status":"SUCCESS"}`), nil
}

func (m *MockWalletGateway) Transfer(ctx context.Context, req application.TransferOrder) (*application.TransferReceipt, error) {
	m.mu.Lock()
	m.Transfers = append(m.Transfers, req)
	m.mu.Unlock()
	if m.TransferFn != nil {
		return m.TransferFn(ctx, req)
	}
	return &application.TransferReceipt{
		Status:       "USER_CONSENT_NEEDED",
		ConsentToken: "XYZ789",
		Body:         json.RawMessage(`{"status":"USER_CONSENT_NEEDED","consentToken":"XYZ789"}`),
	}, nil
}

func (m *MockWalletGateway) GetWallet(ctx context.Context, email string) (*application.Wallet, error) {
	m.mu.Lock()
	m.WalletCalls = append(m.WalletCalls, email)
	addr := m.Wallets[email]
	m.mu.Unlock()
	if m.GetWalletFn != nil {
		return m.GetWalletFn(ctx, email)
	}
	return &application.Wallet{EthAddress: addr}, nil
}

func (m *MockWalletGateway) InvokeLambda(ctx context.Context, req application.LambdaCall) (json.RawMessage, error) {
	m.mu.Lock()
	m.Invocations = append(m.Invocations, req)
	m.mu.Unlock()
	if m.InvokeLambdaFn != nil {
		return m.InvokeLambdaFn(ctx, req)
	}
	return json.RawMessage(`{"status":"QUEUED","transactionId":"tx-1"}`), nil
}

func (m *MockWalletGateway) ReadLambda(ctx context.Context, req application.LambdaCall) (json.RawMessage, error) {
	m.mu.Lock()
	m.Reads = append(m.Reads, req)
	m.mu.Unlock()
	if m.ReadLambdaFn != nil {
		return m.ReadLambdaFn(ctx, req)
	}
	return json.RawMessage(`{"status":"SUCCESS","data":"0"}`), nil
}

// MockNotifier collects notices; NotifyFn can fail or block a send.
type MockNotifier struct {
	mu       sync.Mutex
	NotifyFn func(ctx context.Context, notice domain.TransferNotice) error
	Sent     []domain.TransferNotice
}

func (m *MockNotifier) NotifyTransfer(ctx context.Context, notice domain.TransferNotice) error {
	if m.NotifyFn != nil {
		if err := m.NotifyFn(ctx, notice); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, notice)
	return nil
}

func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
