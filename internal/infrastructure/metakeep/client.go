package metakeep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/config"
	"github.com/google/uuid"
)

const (
	balancePath      = "/v2/app/coin/balance"
	mintPath         = "/v2/app/coin/mint"
	transferPath     = "/v2/app/coin/transfer"
	getWalletPath    = "/v3/getWallet"
	lambdaInvokePath = "/v2/app/lambda/invoke"
	lambdaReadPath   = "/v2/app/lambda/read"

	maxResponseBytes = 4 << 20
)

// Client talks to the MetaKeep app API. Every call is a single attempt;
// failures go straight back to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	newKey     func() string
}

type Option func(*Client)

// WithHTTPClient replaces the default client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithIdempotencyKeys overrides how idempotency keys are generated.
func WithIdempotencyKeys(fn func() string) Option {
	return func(c *Client) { c.newKey = fn }
}

func NewClient(cfg config.MetaKeepConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		newKey: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ application.WalletGateway = (*Client)(nil)

func (c *Client) Balance(ctx context.Context, req application.BalanceQuery) (json.RawMessage, error) {
	body := balanceRequest{
		Coins: coinList{Currencies: req.Currencies},
		Of:    user{Email: req.Email},
	}
	return c.sendRequest(ctx, "balance", balancePath, body, false)
}

func (c *Client) Mint(ctx context.Context, req application.MintOrder) (json.RawMessage, error) {
	body := mintRequest{
		Coin:   coin{Currency: req.Currency},
		Amount: req.Amount,
		To:     user{Email: req.Email},
		Locked: false,
	}
	return c.sendRequest(ctx, "mint", mintPath, body, true)
}

func (c *Client) Transfer(ctx context.Context, req application.TransferOrder) (*application.TransferReceipt, error) {
	body := transferRequest{
		Coin:   coin{Currency: req.Currency},
		Amount: req.Amount,
		From:   user{Email: req.FromEmail},
		To:     user{Email: req.ToEmail},
	}
	raw, err := c.sendRequest(ctx, "transfer", transferPath, body, true)
	if err != nil {
		return nil, err
	}

	var resp transferResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &application.GatewayError{
			Operation:  "transfer",
			StatusCode: http.StatusOK,
			Status:     application.UpstreamUnavailable,
			Err:        err,
		}
	}

	return &application.TransferReceipt{
		Status:       resp.Status,
		ConsentToken: resp.ConsentToken,
		Body:         raw,
	}, nil
}

func (c *Client) GetWallet(ctx context.Context, email string) (*application.Wallet, error) {
	raw, err := c.sendRequest(ctx, "getWallet", getWalletPath, getWalletRequest{User: user{Email: email}}, false)
	if err != nil {
		return nil, err
	}

	var resp getWalletResponse
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Wallet.EthAddress == "" {
		return nil, &application.GatewayError{
			Operation:  "getWallet",
			StatusCode: http.StatusOK,
			Status:     statusOr(resp.Status),
			Err:        err,
		}
	}

	return &application.Wallet{
		EthAddress: resp.Wallet.EthAddress,
		SolAddress: resp.Wallet.SolAddress,
		EosAddress: resp.Wallet.EosAddress,
	}, nil
}

func (c *Client) InvokeLambda(ctx context.Context, req application.LambdaCall) (json.RawMessage, error) {
	return c.sendRequest(ctx, "lambdaInvoke", lambdaInvokePath, toLambdaRequest(req), true)
}

func (c *Client) ReadLambda(ctx context.Context, req application.LambdaCall) (json.RawMessage, error) {
	return c.sendRequest(ctx, "lambdaRead", lambdaReadPath, toLambdaRequest(req), false)
}

func toLambdaRequest(req application.LambdaCall) lambdaRequest {
	args := req.Args
	if args == nil {
		args = []any{}
	}
	return lambdaRequest{
		Lambda:   req.Contract,
		Function: lambdaFunction{Name: req.Function, Args: args},
		Reason:   req.Reason,
	}
}

func (c *Client) sendRequest(ctx context.Context, operation, path string, reqBody any, idempotent bool) (json.RawMessage, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling %s request: %w", operation, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating %s request: %w", operation, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	if idempotent {
		httpReq.Header.Set("Idempotency-Key", c.newKey())
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error calling metakeep %s: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading metakeep %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &application.GatewayError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     statusText(body),
		}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, &application.GatewayError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     application.UpstreamUnavailable,
		}
	}

	return json.RawMessage(trimmed), nil
}

// statusText pulls the provider's "status" field out of an error body.
func statusText(body []byte) string {
	var env statusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return application.UpstreamUnavailable
	}
	return statusOr(env.Status)
}

func statusOr(status string) string {
	if status == "" {
		return application.UpstreamUnavailable
	}
	return status
}
