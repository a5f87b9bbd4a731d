package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/interfaces/rest"
	"github.com/stretchr/testify/require"
)

// TestClient wraps HTTP calls to a running proxy
type TestClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a decoded failure envelope.
type APIError struct {
	StatusCode int
	Body       rest.ErrorResponse
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s (%s)", e.StatusCode, e.Body.Message, e.Body.Error.Code)
}

type successEnvelope struct {
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *TestClient) post(t *testing.T, path string, req any) (json.RawMessage, error) {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	require.NoError(t, err)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		require.NoError(t, json.Unmarshal(bodyBytes, &apiErr.Body), string(bodyBytes))
		return nil, apiErr
	}

	var env successEnvelope
	require.NoError(t, json.Unmarshal(bodyBytes, &env), string(bodyBytes))
	return env.Data, nil
}

// Mint calls /mint
func (c *TestClient) Mint(t *testing.T, email string, amount any) (json.RawMessage, error) {
	return c.post(t, "/mint", map[string]any{"email": email, "amount": amount})
}

// Balance calls /balance
func (c *TestClient) Balance(t *testing.T, email string) (json.RawMessage, error) {
	return c.post(t, "/balance", map[string]any{"email": email})
}

// Transfer calls /transfer and returns the consent token from the upstream body
func (c *TestClient) Transfer(t *testing.T, from, to string, amount any) (string, error) {
	data, err := c.post(t, "/transfer", map[string]any{
		"fromEmail": from,
		"toEmail":   to,
		"amount":    amount,
	})
	if err != nil {
		return "", err
	}

	var receipt struct {
		ConsentToken string `json:"consentToken"`
	}
	require.NoError(t, json.Unmarshal(data, &receipt))
	return receipt.ConsentToken, nil
}

// ConfirmTransfer calls /confirm-transfer
func (c *TestClient) ConfirmTransfer(t *testing.T, token string) (bool, error) {
	data, err := c.post(t, "/confirm-transfer", map[string]any{"consentToken": token})
	if err != nil {
		return false, err
	}

	var result struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(data, &result))
	return result.Success, nil
}

// Get issues a plain GET and returns status and body
func (c *TestClient) Get(t *testing.T, path string) (int, []byte) {
	t.Helper()

	resp, err := c.httpClient.Get(c.baseURL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}
