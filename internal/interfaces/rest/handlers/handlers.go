package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application/services"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/interfaces/rest"
)

type TokenService interface {
	Balance(ctx context.Context, email string) (json.RawMessage, error)
	Mint(ctx context.Context, cmd services.MintCommand) (json.RawMessage, error)
	Transfer(ctx context.Context, cmd services.TransferCommand) (json.RawMessage, error)
	ConfirmTransfer(ctx context.Context, cmd services.ConfirmTransferCommand) (*services.ConfirmResult, error)
}

type USDCService interface {
	Balance(ctx context.Context, email string) (json.RawMessage, error)
	Mint(ctx context.Context, cmd services.MintCommand) (json.RawMessage, error)
	InitiateTransfer(ctx context.Context, cmd services.TransferCommand) (*services.TransferAuthorization, error)
	CompleteTransfer(ctx context.Context, cmd services.CompleteUSDCTransferCommand) (*services.USDCTransferResult, error)
}

// PendingCounter reports how many consent tokens await confirmation.
type PendingCounter interface {
	Len() int
}

type Handlers struct {
	tokens   TokenService
	usdc     USDCService
	pending  PendingCounter
	validate *rest.Validator
	logger   *slog.Logger
}

func NewHandlers(
	tokens TokenService,
	usdc USDCService,
	pending PendingCounter,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		tokens:   tokens,
		usdc:     usdc,
		pending:  pending,
		validate: rest.NewValidator(),
		logger:   logger,
	}
}

// Paths lists every route served by RegisterRoutes.
var Paths = []string{
	"/hello",
	"/healthz",
	"/balance",
	"/mint",
	"/transfer",
	"/confirm-transfer",
	"/transfer-usdc",
	"/confirm-transfer-usdc",
	"/balance-usdc",
	"/mint-usdc",
}

func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /hello", h.HandleHello)
	mux.HandleFunc("GET /healthz", h.HandleHealth)

	mux.HandleFunc("POST /balance", h.HandleBalance)
	mux.HandleFunc("POST /mint", h.HandleMint)
	mux.HandleFunc("POST /transfer", h.HandleTransfer)
	mux.HandleFunc("POST /confirm-transfer", h.HandleConfirmTransfer)

	mux.HandleFunc("POST /transfer-usdc", h.HandleInitiateUSDCTransfer)
	mux.HandleFunc("POST /confirm-transfer-usdc", h.HandleCompleteUSDCTransfer)
	mux.HandleFunc("POST /balance-usdc", h.HandleUSDCBalance)
	mux.HandleFunc("POST /mint-usdc", h.HandleUSDCMint)
}

// fail is the containment boundary of every handler: it logs the operation
// with its input and writes the mapped error.
func (h *Handlers) fail(w http.ResponseWriter, operation string, input any, err error) {
	h.logger.Error("request failed",
		"operation", operation,
		"input", input,
		"error", err,
	)
	rest.WriteError(w, err, nil)
}
