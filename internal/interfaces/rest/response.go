package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
)

type SuccessResponse struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Value   any    `json:"value,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteSuccess(w http.ResponseWriter, data any, message string) {
	WriteJSON(w, http.StatusOK, SuccessResponse{
		Status:  http.StatusOK,
		Data:    data,
		Message: message,
	})
}

// WriteError maps application errors to HTTP responses. Only the mapped
// message reaches the client; anything unexpected is logged here.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	statusCode := application.ToHTTPStatus(err)
	message := application.ToMessage(err)

	detail := ErrorDetail{
		Code:    application.ToErrorCode(err),
		Message: message,
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		detail.Field = domainErr.Field
		detail.Value = domainErr.Value
	}

	if statusCode == http.StatusInternalServerError && logger != nil {
		if _, ok := application.IsGatewayError(err); !ok {
			logger.Error("unexpected error", "error", err)
		}
	}

	WriteJSON(w, statusCode, ErrorResponse{
		Status:  statusCode,
		Message: message,
		Error:   detail,
	})
}
