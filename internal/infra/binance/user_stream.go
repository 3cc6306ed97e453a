package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"primetrade/internal/infra"
)

// OrderUpdate is one ORDER_TRADE_UPDATE event from the user-data stream.
type OrderUpdate struct {
	Symbol      string
	OrderID     int64
	Status      string
	FilledQty   string
	AvgPrice    string
	EventTimeMS int64
}

// IsTerminal reports whether the order reached a final state.
func (u OrderUpdate) IsTerminal() bool {
	switch u.Status {
	case "FILLED", "CANCELED", "REJECTED", "EXPIRED":
		return true
	}
	return false
}

// userStreamEvent mirrors the futures user-data stream payload shape.
type userStreamEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Order     struct {
		Symbol    string `json:"s"`
		OrderID   int64  `json:"i"`
		Status    string `json:"X"`
		FilledQty string `json:"z"`
		AvgPrice  string `json:"ap"`
	} `json:"o"`
}

// UserStreamWatcher subscribes to the futures user-data stream and
// delivers order updates to a callback. It obtains a listen key over
// REST, dials the stream, keeps the key alive, and reconnects with
// backoff through the shared stream worker.
type UserStreamWatcher struct {
	client    *Client
	streamURL string
	onUpdate  func(OrderUpdate)

	mu        sync.RWMutex
	listenKey string

	worker *infra.StreamWorker
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// KeepAliveInterval defaults to the 30 minutes Binance recommends
	// for listen key refresh (keys expire after 60).
	KeepAliveInterval time.Duration
}

// NewUserStreamWatcher creates a watcher. An empty streamURL defaults
// to the futures testnet stream endpoint.
func NewUserStreamWatcher(client *Client, streamURL string, onUpdate func(OrderUpdate)) *UserStreamWatcher {
	if streamURL == "" {
		streamURL = TestnetStreamURL
	}
	w := &UserStreamWatcher{
		client:            client,
		streamURL:         strings.TrimRight(streamURL, "/"),
		onUpdate:          onUpdate,
		KeepAliveInterval: 30 * time.Minute,
	}
	w.worker = infra.NewStreamWorker(w)
	return w
}

// Start obtains a listen key and launches the stream.
func (w *UserStreamWatcher) Start(ctx context.Context) error {
	key, err := w.client.StartUserStream(ctx)
	if err != nil {
		return fmt.Errorf("user stream: %w", err)
	}

	w.mu.Lock()
	w.listenKey = key
	w.mu.Unlock()

	ctx, w.cancel = context.WithCancel(ctx)
	w.worker.Start(ctx)

	w.wg.Add(1)
	go w.keepAliveLoop(ctx)

	return nil
}

// Stop shuts the stream down and waits for its goroutines.
func (w *UserStreamWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.worker.Stop()
	w.wg.Wait()
}

// URL implements infra.StreamHandler.
func (w *UserStreamWatcher) URL() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.streamURL + "/ws/" + w.listenKey
}

// Name implements infra.StreamHandler.
func (w *UserStreamWatcher) Name() string { return "binance-user-data" }

// HandleMessage implements infra.StreamHandler.
func (w *UserStreamWatcher) HandleMessage(ctx context.Context, msg []byte) {
	var ev userStreamEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		return
	}
	if ev.EventType != "ORDER_TRADE_UPDATE" {
		return
	}

	update := OrderUpdate{
		Symbol:      ev.Order.Symbol,
		OrderID:     ev.Order.OrderID,
		Status:      ev.Order.Status,
		FilledQty:   ev.Order.FilledQty,
		AvgPrice:    ev.Order.AvgPrice,
		EventTimeMS: ev.EventTime,
	}

	if w.onUpdate != nil {
		w.onUpdate(update)
	}
}

func (w *UserStreamWatcher) keepAliveLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.client.KeepAliveUserStream(ctx); err != nil {
				slog.Warn("listen key keepalive failed", "error", err)
			}
		}
	}
}
