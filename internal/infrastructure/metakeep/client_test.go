package metakeep_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/config"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/infrastructure/metakeep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path           string
	APIKey         string
	IdempotencyKey string
	Body           map[string]any
}

type upstreamStub struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	body     string
}

func (s *upstreamStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	s.mu.Lock()
	s.requests = append(s.requests, capturedRequest{
		Path:           r.URL.Path,
		APIKey:         r.Header.Get("x-api-key"),
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
		Body:           body,
	})
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	_, _ = w.Write([]byte(s.body))
}

func (s *upstreamStub) last(t *testing.T) capturedRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests)
	return s.requests[len(s.requests)-1]
}

func newClient(t *testing.T, stub *upstreamStub, opts ...metakeep.Option) *metakeep.Client {
	t.Helper()
	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)

	return metakeep.NewClient(config.MetaKeepConfig{
		BaseURL: server.URL + "/",
		APIKey:  "secret-key",
		Timeout: 5 * time.Second,
	}, opts...)
}

func TestClient_Balance_NoIdempotencyKey(t *testing.T) {
	stub := &upstreamStub{status: http.StatusOK, body: `{"status":"SUCCESS","balances":[]}`}
	client := newClient(t, stub)

	raw, err := client.Balance(context.Background(), application.BalanceQuery{
		Email:      "a@x.com",
		Currencies: []string{"0xtoken"},
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"SUCCESS","balances":[]}`, string(raw))

	req := stub.last(t)
	assert.Equal(t, "/v2/app/coin/balance", req.Path)
	assert.Equal(t, "secret-key", req.APIKey)
	assert.Empty(t, req.IdempotencyKey)
	assert.Equal(t, map[string]any{"email": "a@x.com"}, req.Body["of"])
}

func TestClient_Mint_FreshIdempotencyKeyPerCall(t *testing.T) {
	stub := &upstreamStub{status: http.StatusOK, body: `{"status":"SUCCESS","transactionHash":"0xabc"}`}
	client := newClient(t, stub)

	order := application.MintOrder{Email: "a@x.com", Currency: "0xtoken", Amount: "5"}
	_, err := client.Mint(context.Background(), order)
	require.NoError(t, err)
	first := stub.last(t)

	_, err = client.Mint(context.Background(), order)
	require.NoError(t, err)
	second := stub.last(t)

	assert.Equal(t, "/v2/app/coin/mint", first.Path)
	assert.NotEmpty(t, first.IdempotencyKey)
	assert.NotEqual(t, first.IdempotencyKey, second.IdempotencyKey)
	assert.Equal(t, "5", first.Body["amount"])
	assert.Equal(t, false, first.Body["locked"])
}

func TestClient_Transfer_ParsesConsentToken(t *testing.T) {
	stub := &upstreamStub{status: http.StatusOK, body: `{"status":"SUCCESS","consentToken":"XYZ789"}`}
	client := newClient(t, stub, metakeep.WithIdempotencyKeys(func() string { return "fixed-key" }))

	receipt, err := client.Transfer(context.Background(), application.TransferOrder{
		FromEmail: "a@x.com",
		ToEmail:   "b@x.com",
		Currency:  "0xtoken",
		Amount:    "5",
	})

	require.NoError(t, err)
	assert.Equal(t, "XYZ789", receipt.ConsentToken)
	assert.Equal(t, "SUCCESS", receipt.Status)
	assert.JSONEq(t, `{"status":"SUCCESS","consentToken":"XYZ789"}`, string(receipt.Body))

	req := stub.last(t)
	assert.Equal(t, "/v2/app/coin/transfer", req.Path)
	assert.Equal(t, "fixed-key", req.IdempotencyKey)
	assert.Equal(t, map[string]any{"email": "a@x.com"}, req.Body["from"])
	assert.Equal(t, map[string]any{"email": "b@x.com"}, req.Body["to"])
}

func TestClient_UpstreamErrorCarriesStatusText(t *testing.T) {
	stub := &upstreamStub{status: http.StatusBadRequest, body: `{"status":"INSUFFICIENT_BALANCE"}`}
	client := newClient(t, stub)

	_, err := client.Mint(context.Background(), application.MintOrder{Email: "a@x.com", Currency: "0xtoken", Amount: "5"})

	gwErr, ok := application.IsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, "INSUFFICIENT_BALANCE", gwErr.Status)
	assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
}

func TestClient_UpstreamErrorWithoutStatus(t *testing.T) {
	stub := &upstreamStub{status: http.StatusBadGateway, body: `<html>bad gateway</html>`}
	client := newClient(t, stub)

	_, err := client.Balance(context.Background(), application.BalanceQuery{Email: "a@x.com"})

	gwErr, ok := application.IsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, application.UpstreamUnavailable, gwErr.Status)
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	stub := &upstreamStub{status: http.StatusOK, body: ``}
	client := newClient(t, stub)

	_, err := client.Balance(context.Background(), application.BalanceQuery{Email: "a@x.com"})

	gwErr, ok := application.IsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, application.UpstreamUnavailable, gwErr.Status)
}

func TestClient_GetWallet(t *testing.T) {
	stub := &upstreamStub{status: http.StatusOK, body: `{"status":"SUCCESS","wallet":{"ethAddress":"0x1111111111111111111111111111111111111111","solAddress":"sol","eosAddress":"eos"}}`}
	client := newClient(t, stub)

	wallet, err := client.GetWallet(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", wallet.EthAddress)
	req := stub.last(t)
	assert.Equal(t, "/v3/getWallet", req.Path)
	assert.Empty(t, req.IdempotencyKey)
}

func TestClient_GetWallet_MissingAddress(t *testing.T) {
	stub := &upstreamStub{status: http.StatusOK, body: `{"status":"USER_NOT_FOUND"}`}
	client := newClient(t, stub)

	_, err := client.GetWallet(context.Background(), "a@x.com")

	gwErr, ok := application.IsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, "USER_NOT_FOUND", gwErr.Status)
}

func TestClient_Lambda(t *testing.T) {
	stub := &upstreamStub{status: http.StatusOK, body: `{"status":"SUCCESS","data":"1000"}`}
	client := newClient(t, stub)

	call := application.LambdaCall{Contract: "0xtoken", Function: "balanceOf", Args: []any{"0xabc"}}

	_, err := client.ReadLambda(context.Background(), call)
	require.NoError(t, err)
	read := stub.last(t)
	assert.Equal(t, "/v2/app/lambda/read", read.Path)
	assert.Empty(t, read.IdempotencyKey)
	assert.Equal(t, "0xtoken", read.Body["lambda"])

	call.Function = "mint"
	call.Reason = "Mint MockUSD"
	_, err = client.InvokeLambda(context.Background(), call)
	require.NoError(t, err)
	invoke := stub.last(t)
	assert.Equal(t, "/v2/app/lambda/invoke", invoke.Path)
	assert.NotEmpty(t, invoke.IdempotencyKey)
	assert.Equal(t, "Mint MockUSD", invoke.Body["reason"])
	assert.Equal(t, map[string]any{"name": "mint", "args": []any{"0xabc"}}, invoke.Body["function"])
}

func TestClient_NetworkErrorIsNotGatewayError(t *testing.T) {
	client := metakeep.NewClient(config.MetaKeepConfig{
		BaseURL: "http://127.0.0.1:1",
		APIKey:  "secret-key",
		Timeout: time.Second,
	})

	_, err := client.Balance(context.Background(), application.BalanceQuery{Email: "a@x.com"})

	require.Error(t, err)
	_, ok := application.IsGatewayError(err)
	assert.False(t, ok)
}
