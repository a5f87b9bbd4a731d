package handlers

import (
	"net/http"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application/services"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/interfaces/rest"
)

type BalanceRequest struct {
	Email string `json:"email" validate:"required,email" example:"alice@banza.xyz"`
}

type MintRequest struct {
	Email  string      `json:"email" validate:"required,email" example:"alice@banza.xyz"`
	Amount rest.Amount `json:"amount" validate:"required,whole_amount" swaggertype:"number" example:"5"`
}

type TransferRequest struct {
	FromEmail string      `json:"fromEmail" validate:"required,email" example:"alice@banza.xyz"`
	ToEmail   string      `json:"toEmail" validate:"required,email" example:"bob@banza.xyz"`
	Amount    rest.Amount `json:"amount" validate:"required,whole_amount" swaggertype:"number" example:"5"`
}

type ConfirmTransferRequest struct {
	ConsentToken string `json:"consentToken" validate:"required" example:"XYZ789"`
}

// HandleBalance godoc
// @Summary      BCN balance
// @Description  Returns the provider's balance listing for the BCN coin.
// @Tags         bcn
// @Accept       json
// @Produce      json
// @Param        request  body      BalanceRequest        true  "Wallet owner"
// @Success      200      {object}  rest.SuccessResponse  "Fetched Balances."
// @Failure      400      {object}  rest.ErrorResponse
// @Failure      500      {object}  rest.ErrorResponse
// @Router       /balance [post]
func (h *Handlers) HandleBalance(w http.ResponseWriter, r *http.Request) {
	const operation = "getBalances"

	var req BalanceRequest
	if err := h.validate.Decode(r, &req); err != nil {
		h.fail(w, operation, req, err)
		return
	}

	balances, err := h.tokens.Balance(r.Context(), req.Email)
	if err != nil {
		h.fail(w, operation, req, err)
		return
	}

	rest.WriteSuccess(w, balances, "Fetched Balances.")
}

// HandleMint godoc
// @Summary      Mint BCN
// @Tags         bcn
// @Accept       json
// @Produce      json
// @Param        request  body      MintRequest           true  "Receiver and whole amount"
// @Success      200      {object}  rest.SuccessResponse  "Minted Tokens."
// @Failure      400      {object}  rest.ErrorResponse
// @Failure      500      {object}  rest.ErrorResponse
// @Router       /mint [post]
func (h *Handlers) HandleMint(w http.ResponseWriter, r *http.Request) {
	const operation = "mintTestTokens"

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

	result, err := h.tokens.Mint(r.Context(), services.MintCommand{
		Email:  req.Email,
		Amount: amount,
	})
	if err != nil {
		h.fail(w, operation, req, err)
		return
	}

	rest.WriteSuccess(w, result, "Minted Tokens.")
}

// HandleTransfer godoc
// @Summary      Transfer BCN
// @Description  Starts a transfer. The provider answers with a consent token the sender must approve; the proxy remembers it for /confirm-transfer.
// @Tags         bcn
// @Accept       json
// @Produce      json
// @Param        request  body      TransferRequest       true  "Parties and whole amount"
// @Success      200      {object}  rest.SuccessResponse  "Transferred Tokens."
// @Failure      400      {object}  rest.ErrorResponse
// @Failure      500      {object}  rest.ErrorResponse
// @Router       /transfer [post]
func (h *Handlers) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	const operation = "transferTestTokens"

	var req TransferRequest
	if err := h.validate.Decode(r, &req); err != nil {
		h.fail(w, operation, req, err)
		return
	}

	amount, err := domain.NewAmount(req.Amount.Decimal, 0)
	if err != nil {
		h.fail(w, operation, req, err)
		return
	}

	result, err := h.tokens.Transfer(r.Context(), services.TransferCommand{
		FromEmail: req.FromEmail,
		ToEmail:   req.ToEmail,
		Amount:    amount,
	})
	if err != nil {
		h.fail(w, operation, req, err)
		return
	}

	rest.WriteSuccess(w, result, "Transferred Tokens.")
}

// HandleConfirmTransfer godoc
// @Summary      Confirm a BCN transfer
// @Description  Emails the receiver of a registered transfer, once. A failed email is reported with success=false and the token can be confirmed again.
// @Tags         bcn
// @Accept       json
// @Produce      json
// @Param        request  body      ConfirmTransferRequest  true  "Consent token from /transfer"
// @Success      200      {object}  rest.SuccessResponse
// @Failure      400      {object}  rest.ErrorResponse  "Consent Token wasn't registered."
// @Failure      409      {object}  rest.ErrorResponse  "Confirmation already in progress"
// @Failure      500      {object}  rest.ErrorResponse
// @Router       /confirm-transfer [post]
func (h *Handlers) HandleConfirmTransfer(w http.ResponseWriter, r *http.Request) {
	const operation = "emailOnTransferTokens"

	var req ConfirmTransferRequest
	if err := h.validate.Decode(r, &req); err != nil {
		h.fail(w, operation, req, err)
		return
	}

	result, err := h.tokens.ConfirmTransfer(r.Context(), services.ConfirmTransferCommand{
		ConsentToken: req.ConsentToken,
	})
	if err != nil {
		h.fail(w, operation, req, err)
		return
	}

	message := "Successfully sent an email to the receiver."
	if !result.Success {
		message = "Failed to send an email to the receiver."
	}
	rest.WriteSuccess(w, result, message)
}
