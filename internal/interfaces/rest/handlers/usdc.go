package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application/services"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/interfaces/rest"
)

type USDCTransferRequest struct {
	FromEmail string      `json:"fromEmail" validate:"required,email" example:"alice@banza.xyz"`
	ToEmail   string      `json:"toEmail" validate:"required,email" example:"bob@banza.xyz"`
	Amount    rest.Amount `json:"amount" validate:"required,cent_amount" swaggertype:"number" example:"12.5"`
}

type CompleteUSDCTransferRequest struct {
	TypedMessage json.RawMessage `json:"typedMessage" validate:"required" swaggertype:"object"`
	Signature    string          `json:"signature" validate:"required" example:"0x..."`
	FromEmail    string          `json:"fromEmail" validate:"required,email" example:"alice@banza.xyz"`
	ToEmail      string          `json:"toEmail" validate:"required,email" example:"bob@banza.xyz"`
	Amount       rest.Amount     `json:"amount" validate:"required,cent_amount" swaggertype:"number" example:"12.5"`
}

// HandleInitiateUSDCTransfer godoc
// @Summary      Start a USDC transfer
// @Description  Resolves both wallets and returns the EIP-712 TransferWithAuthorization message the sender signs.
// @Tags         usdc
// @Accept       json
// @Produce      json
// @Param        request  body      USDCTransferRequest   true  "Parties and amount (up to 2 decimals)"
// @Success      200      {object}  rest.SuccessResponse
// @Failure      400      {object}  rest.ErrorResponse
// @Failure      500      {object}  rest.ErrorResponse
// @Router       /transfer-usdc [post]
func (h *Handlers) HandleInitiateUSDCTransfer(w http.ResponseWriter, r *http.Request) {
	const operation = "initiateTransferMockUSD"

	var req USDCTransferRequest
	if err := h.validate.Decode(r, &req); err != nil {
		h.fail(w, operation, req, err)
		return
	}

	amount, err := domain.NewAmount(req.Amount.Decimal, 2)
	if err != nil {
		h.fail(w, operation, req, err)
		return
	}

	auth, err := h.usdc.InitiateTransfer(r.Context(), services.TransferCommand{
		FromEmail: req.FromEmail,
		ToEmail:   req.ToEmail,
		Amount:    amount,
	})
	if err != nil {
		h.fail(w, operation, req, err)
		return
	}

	rest.WriteSuccess(w, auth, "Created transfer authorization.")
}

// HandleCompleteUSDCTransfer godoc
// @Summary      Complete a USDC transfer
// @Description  Submits the signed authorization to the token contract and emails the receiver.
// @Tags         usdc
// @Accept       json
// @Produce      json
// @Param        request  body      CompleteUSDCTransferRequest  true  "Signed typed message"
// @Success      200      {object}  rest.SuccessResponse
// @Failure      400      {object}  rest.ErrorResponse
// @Failure      500      {object}  rest.ErrorResponse
// @Router       /confirm-transfer-usdc [post]
func (h *Handlers) HandleCompleteUSDCTransfer(w http.ResponseWriter, r *http.Request) {
	const operation = "completeTransferMockUSD"

	var req CompleteUSDCTransferRequest
	if err := h.validate.Decode(r, &req); err != nil {
		h.fail(w, operation, req, err)
		return
	}

	amount, err := domain.NewAmount(req.Amount.Decimal, 2)
	if err != nil {
		h.fail(w, operation, req, err)
		return
	}

	result, err := h.usdc.CompleteTransfer(r.Context(), services.CompleteUSDCTransferCommand{
		TypedMessage: req.TypedMessage,
		Signature:    req.Signature,
		FromEmail:    req.FromEmail,
		ToEmail:      req.ToEmail,
		Amount:       amount,
	})
	if err != nil {
		h.fail(w, operation, req, err)
		return
	}

	message := "Transferred USDC."
	if !result.Success {
		message = "Transferred USDC, but failed to send an email to the receiver."
	}
	rest.WriteSuccess(w, result, message)
}

// HandleUSDCBalance godoc
// @Summary      USDC balance
// @Tags         usdc
// @Accept       json
// @Produce      json
// @Param        request  body      BalanceRequest        true  "Wallet owner"
// @Success      200      {object}  rest.SuccessResponse
// @Failure      400      {object}  rest.ErrorResponse
// @Failure      500      {object}  rest.ErrorResponse
// @Router       /balance-usdc [post]
func (h *Handlers) HandleUSDCBalance(w http.ResponseWriter, r *http.Request) {
	const operation = "getUSDCBalance"

	var req BalanceRequest
	if err := h.validate.Decode(r, &req); err != nil {
		h.fail(w, operation, req, err)
		return
	}

	balance, err := h.usdc.Balance(r.Context(), req.Email)
	if err != nil {
		h.fail(w, operation, req, err)
		return
	}

	rest.WriteSuccess(w, balance, "Fetched USDC Balance.")
}

// HandleUSDCMint godoc
// @Summary      Mint USDC
// @Tags         usdc
// @Accept       json
// @Produce      json
// @Param        request  body      MintRequest           true  "Receiver and whole amount"
// @Success      200      {object}  rest.SuccessResponse
// @Failure      400      {object}  rest.ErrorResponse
// @Failure      500      {object}  rest.ErrorResponse
// @Router       /mint-usdc [post]
func (h *Handlers) HandleUSDCMint(w http.ResponseWriter, r *http.Request) {
	const operation = "mintMockUSDCTokens"

	var req MintRequest
	if err := h.validate.Decode(r, &req); err != nil {
		h.fail(w, operation, req, err)
		return
	}

	amount, err := domain.NewAmount(req.Amount.Decimal, 0)
	if err != nil {
		h.fail(w, operation, req, err)
		return
	}

	result, err := h.usdc.Mint(r.Context(), services.MintCommand{
		Email:  req.Email,
		Amount: amount,
	})
	if err != nil {
		h.fail(w, operation, req, err)
		return
	}

	rest.WriteSuccess(w, result, "Minted USDC.")
}
