// Package sdk provides a Go client for the gigchain JSON-RPC surface.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"gigchain/core"
	"gigchain/core/types"
)

// Error is a JSON-RPC failure returned by the node, preserving the numeric
// code so callers can branch on the failure class.
type Error struct {
	Code    int
	Message string
	Data    json.RawMessage
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Client talks to a gigchain node over HTTP JSON-RPC.
type Client struct {
	endpoint   string
	httpClient *http.Client
	nextID     atomic.Uint64
}

// Option mutates the client configuration during construction.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New constructs a client pointed at the node's RPC endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("sdk: endpoint required")
	}
	client := &Client{
		endpoint:   trimmed,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	} `json:"error"`
}

// call performs one JSON-RPC exchange and decodes the result into out when
// out is non-nil. RPC-level failures surface as *Error.
func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	payload := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
	}
	if params != nil {
		payload.Params = []interface{}{params}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sdk: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sdk: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sdk: %s: %w", method, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sdk: read response: %w", err)
	}
	var decoded rpcResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("sdk: decode response (status %d): %w", resp.StatusCode, err)
	}
	if decoded.Error != nil {
		return &Error{Code: decoded.Error.Code, Message: decoded.Error.Message, Data: decoded.Error.Data}
	}
	if out != nil && len(decoded.Result) > 0 && string(decoded.Result) != "null" {
		if err := json.Unmarshal(decoded.Result, out); err != nil {
			return fmt.Errorf("sdk: decode result: %w", err)
		}
	}
	return nil
}

// SubmitAction routes a raw action through the dispatcher and returns its
// receipt.
func (c *Client) SubmitAction(ctx context.Context, action core.Action) (*types.Receipt, error) {
	var receipt types.Receipt
	if err := c.call(ctx, "chain_submitAction", action, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// GetReceipt fetches the receipt for a previously submitted action. A nil
// receipt means the hash is unknown.
func (c *Client) GetReceipt(ctx context.Context, hash string) (*types.Receipt, error) {
	var receipt *types.Receipt
	if err := c.call(ctx, "chain_getReceipt", map[string]string{"hash": hash}, &receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}
