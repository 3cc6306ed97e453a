package binance

import (
	"fmt"
	"time"
)

const (
	// TestnetBaseURL is the Binance USDT-M futures testnet REST endpoint.
	TestnetBaseURL = "https://testnet.binancefuture.com"
	// TestnetStreamURL is the matching user-data websocket endpoint.
	TestnetStreamURL = "wss://stream.binancefuture.com"

	orderPath      = "/fapi/v1/order"
	serverTimePath = "/fapi/v1/time"
	listenKeyPath  = "/fapi/v1/listenKey"

	requestTimeout = 10 * time.Second

	apiKeyHeader = "X-MBX-APIKEY"
)

// TransportError reports a failed HTTP round trip: either a non-2xx
// status (StatusCode/Body set) or a network-level failure (Cause set).
type TransportError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error: %v", e.Cause)
	}
	return fmt.Sprintf("transport error: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError reports a response body that is not the JSON
// object the endpoint is specified to return.
type MalformedResponseError struct {
	Body  string
	Cause error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed response: %v", e.Cause)
	}
	return fmt.Sprintf("malformed response: expected JSON object, got %q", truncate(e.Body, 120))
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

type orderPayload struct {
	OrderID *int64 `json:"orderId"`
	Status  string `json:"status"`
}

type serverTimePayload struct {
	ServerTime int64 `json:"serverTime"`
}

type listenKeyPayload struct {
	ListenKey string `json:"listenKey"`
}
