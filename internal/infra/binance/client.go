package binance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"primetrade/internal/domain"
	"primetrade/internal/infra"
)

// Client executes signed and unsigned requests against the Binance
// USDT-M futures REST API. The API key rides on every request as a
// static header; it is never part of the signature. The underlying
// http.Client is shared and reused across calls.
type Client struct {
	baseURL    string
	apiKey     string
	signer     *Signer
	httpClient *http.Client
}

// NewClient creates a REST client for the given credential.
// An empty baseURL defaults to the futures testnet.
func NewClient(cred infra.Credential, baseURL string) *Client {
	if baseURL == "" {
		baseURL = TestnetBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cred.APIKey,
		signer:     NewSigner(cred.APISecret),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Do executes one request. Params travel in the query string for every
// method (Binance futures convention). When signed, timestamp and
// signature are appended by the Signer before dispatch. No retries:
// a single failure surfaces immediately.
func (c *Client) Do(ctx context.Context, method, path string, params *Params, signed bool) ([]byte, error) {
	if params == nil {
		params = NewParams()
	}
	if signed {
		params = c.signer.PrepareSigned(params)
	}

	reqURL := c.baseURL + path
	if query := params.Encode(); query != "" {
		reqURL += "?" + query
	}

	// Request/response detail goes to Debug only: it may carry order
	// detail that must stay out of default-visible output.
	slog.Debug("binance request", "method", method, "path", path, "query", params.Encode())

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}

	slog.Debug("binance response", "status", resp.StatusCode, "body", string(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// PlaceOrder submits a new order. An object response without orderId is
// a valid rejected/queued outcome, not an error.
func (c *Client) PlaceOrder(ctx context.Context, params *Params) (domain.OrderResult, error) {
	body, err := c.Do(ctx, http.MethodPost, orderPath, params, true)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("place order: %w", err)
	}
	return parseOrderResult(body)
}

// GetOrder fetches the current status of an order.
func (c *Client) GetOrder(ctx context.Context, symbol string, orderID int64) (domain.OrderResult, error) {
	params := NewParams()
	params.Add("symbol", strings.ToUpper(symbol))
	params.Add("orderId", strconv.FormatInt(orderID, 10))

	body, err := c.Do(ctx, http.MethodGet, orderPath, params, true)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("get order: %w", err)
	}
	return parseOrderResult(body)
}

// CancelOrder cancels an open order.
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) (domain.OrderResult, error) {
	params := NewParams()
	params.Add("symbol", strings.ToUpper(symbol))
	params.Add("orderId", strconv.FormatInt(orderID, 10))

	body, err := c.Do(ctx, http.MethodDelete, orderPath, params, true)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("cancel order: %w", err)
	}
	return parseOrderResult(body)
}

// ServerTime fetches the exchange clock over the unsigned path.
// Useful as a connectivity and clock-drift preflight.
func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	body, err := c.Do(ctx, http.MethodGet, serverTimePath, nil, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("server time: %w", err)
	}

	var payload serverTimePayload
	if err := unmarshalObject(body, &payload); err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(payload.ServerTime), nil
}

// StartUserStream obtains a listen key for the user-data stream.
// The endpoint authenticates by API key header alone.
func (c *Client) StartUserStream(ctx context.Context) (string, error) {
	body, err := c.Do(ctx, http.MethodPost, listenKeyPath, nil, false)
	if err != nil {
		return "", fmt.Errorf("start user stream: %w", err)
	}

	var payload listenKeyPayload
	if err := unmarshalObject(body, &payload); err != nil {
		return "", err
	}
	if payload.ListenKey == "" {
		return "", &MalformedResponseError{Body: string(body)}
	}
	return payload.ListenKey, nil
}

// KeepAliveUserStream extends the listen key lifetime.
func (c *Client) KeepAliveUserStream(ctx context.Context) error {
	if _, err := c.Do(ctx, http.MethodPut, listenKeyPath, nil, false); err != nil {
		return fmt.Errorf("keepalive user stream: %w", err)
	}
	return nil
}

// Wipe clears the held secret. Call once the client is no longer needed.
func (c *Client) Wipe() {
	c.signer.Wipe()
}

func parseOrderResult(body []byte) (domain.OrderResult, error) {
	var payload orderPayload
	if err := unmarshalObject(body, &payload); err != nil {
		return domain.OrderResult{}, err
	}

	result := domain.OrderResult{
		Status: payload.Status,
		Raw:    json.RawMessage(body),
	}
	if payload.OrderID != nil {
		result.OrderID = *payload.OrderID
		result.HasOrderID = true
	}
	return result, nil
}

// unmarshalObject decodes body into v, requiring a JSON object at the
// top level. Anything else (array, scalar, null, non-JSON) is malformed.
func unmarshalObject(body []byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return &MalformedResponseError{Body: string(body)}
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return &MalformedResponseError{Body: string(body), Cause: err}
	}
	return nil
}
