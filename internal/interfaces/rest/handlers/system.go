package handlers

import (
	"net/http"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/interfaces/rest"
)

type HealthResponse struct {
	Status        string `json:"status"`
	PendingTokens int    `json:"pendingTokens"`
}

// HandleHello godoc
// @Summary      Liveness text
// @Tags         system
// @Produce      plain
// @Success      200  {string}  string  "Hello World"
// @Router       /hello [get]
func (h *Handlers) HandleHello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello World"))
}

// HandleHealth godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /healthz [get]
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.pending != nil {
		resp.PendingTokens = h.pending.Len()
	}
	rest.WriteJSON(w, http.StatusOK, resp)
}
