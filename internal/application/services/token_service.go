package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
)

// TokenService drives the BCN coin endpoints and the consent token protocol.
type TokenService struct {
	gateway  application.WalletGateway
	registry application.ConsentRegistry
	notifier application.Notifier
	asset    domain.Asset
	logger   *slog.Logger
}

func NewTokenService(
	gateway application.WalletGateway,
	registry application.ConsentRegistry,
	notifier application.Notifier,
	asset domain.Asset,
	logger *slog.Logger,
) *TokenService {
	return &TokenService{
		gateway:  gateway,
		registry: registry,
		notifier: notifier,
		asset:    asset,
		logger:   logger,
	}
}

func (s *TokenService) Balance(ctx context.Context, email string) (json.RawMessage, error) {
	return s.gateway.Balance(ctx, application.BalanceQuery{
		Email:      email,
		Currencies: []string{s.asset.Address},
	})
}

func (s *TokenService) Mint(ctx context.Context, cmd MintCommand) (json.RawMessage, error) {
	return s.gateway.Mint(ctx, application.MintOrder{
		Email:    cmd.Email,
		Currency: s.asset.Address,
		Amount:   cmd.Amount.String(),
	})
}

// Transfer asks the provider to move coins and remembers who to email once the
// sender grants consent. The provider body is returned as is.
func (s *TokenService) Transfer(ctx context.Context, cmd TransferCommand) (json.RawMessage, error) {
	receipt, err := s.gateway.Transfer(ctx, application.TransferOrder{
		FromEmail: cmd.FromEmail,
		ToEmail:   cmd.ToEmail,
		Currency:  s.asset.Address,
		Amount:    cmd.Amount.String(),
	})
	if err != nil {
		return nil, err
	}

	if receipt.ConsentToken == "" {
		s.logger.Warn("transfer accepted without a consent token, nothing registered",
			"status", receipt.Status,
			"from", cmd.FromEmail,
			"to", cmd.ToEmail,
		)
		return receipt.Body, nil
	}

	token := domain.ConsentToken(receipt.ConsentToken)
	registered := s.registry.Register(token, domain.PendingTransferNotification{
		SenderEmail:   cmd.FromEmail,
		ReceiverEmail: cmd.ToEmail,
		Amount:        cmd.Amount.String(),
		Asset:         s.asset.Symbol,
	})
	if !registered {
		s.logger.Warn("consent token already registered, keeping the first record",
			"consent_token", receipt.ConsentToken,
		)
	}

	return receipt.Body, nil
}

// ConfirmTransfer emails the receiver of a registered transfer at most once.
// The token is claimed for the duration of the send, released after a
// delivered email and handed back after a failed one.
func (s *TokenService) ConfirmTransfer(ctx context.Context, cmd ConfirmTransferCommand) (*ConfirmResult, error) {
	token := domain.ConsentToken(cmd.ConsentToken)

	record, err := s.registry.Claim(token)
	if err != nil {
		return nil, err
	}

	released := false
	defer func() {
		if !released {
			s.registry.Unclaim(token)
		}
	}()

	if err := s.notifier.NotifyTransfer(ctx, record.Notice(token)); err != nil {
		s.logger.Error("transfer email failed, consent token kept",
			"consent_token", cmd.ConsentToken,
			"receiver", record.ReceiverEmail,
			"error", err,
		)
		return &ConfirmResult{Success: false}, nil
	}

	released = s.registry.Release(token)
	return &ConfirmResult{Success: true}, nil
}
