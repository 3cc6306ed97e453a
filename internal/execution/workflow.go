package execution

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"primetrade/internal/domain"
	"primetrade/internal/infra/binance"
)

// OrderAPI is the slice of the exchange client the workflow needs.
type OrderAPI interface {
	PlaceOrder(ctx context.Context, params *binance.Params) (domain.OrderResult, error)
	GetOrder(ctx context.Context, symbol string, orderID int64) (domain.OrderResult, error)
}

// Outcome is the final state of one order run: the raw placement result
// plus, when the exchange returned an order id and the follow-up query
// succeeded, the confirmed status. ConfirmErr is secondary: the order
// was already placed, so a failed confirmation never fails the run.
type Outcome struct {
	Result          domain.OrderResult
	ConfirmedStatus string
	Confirmed       bool
	ConfirmErr      error
}

// Workflow drives a single order through validate -> place -> confirm.
// It performs no retries; any placement failure surfaces to the caller.
type Workflow struct {
	api OrderAPI

	// newClientID generates the client order id attached to every
	// placement. Injectable for deterministic tests.
	newClientID func() string
}

// NewWorkflow creates a workflow on top of an exchange client.
func NewWorkflow(api OrderAPI) *Workflow {
	return &Workflow{
		api:         api,
		newClientID: defaultClientID,
	}
}

func defaultClientID() string {
	return "primetrade-" + uuid.NewString()
}

// Run executes one order end to end. Validation failures abort before
// any network call.
func (w *Workflow) Run(ctx context.Context, req domain.OrderRequest) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validate order: %w", err)
	}

	params, err := WireParams(req)
	if err != nil {
		return nil, err
	}
	params.Add("newClientOrderId", w.newClientID())

	symbol, _ := params.Get("symbol")
	kind, _ := params.Get("type")
	slog.Info("placing order", "symbol", symbol, "type", kind)

	result, err := w.api.PlaceOrder(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	out := &Outcome{Result: result}

	if !result.HasOrderID {
		slog.Info("response carries no orderId, skipping status confirmation")
		return out, nil
	}

	confirmed, err := w.api.GetOrder(ctx, symbol, result.OrderID)
	if err != nil {
		// Secondary failure: the order is already on the exchange.
		out.ConfirmErr = fmt.Errorf("confirm order status: %w", err)
		slog.Warn("order placed but status confirmation failed",
			"orderId", result.OrderID, "error", err)
		return out, nil
	}

	out.ConfirmedStatus = confirmed.Status
	out.Confirmed = true
	return out, nil
}

// WireParams maps the order union to the flat parameter set the
// exchange expects. The one place order kinds fan out; field order
// matches what gets signed and sent.
func WireParams(req domain.OrderRequest) (*binance.Params, error) {
	p := binance.NewParams()

	switch o := req.(type) {
	case *domain.MarketOrder:
		p.Add("symbol", o.Symbol)
		p.Add("side", string(o.Side))
		p.Add("type", "MARKET")
		p.Add("quantity", o.Quantity.String())

	case *domain.LimitOrder:
		p.Add("symbol", o.Symbol)
		p.Add("side", string(o.Side))
		p.Add("type", "LIMIT")
		p.Add("quantity", o.Quantity.String())
		p.Add("price", o.Price.String())
		p.Add("timeInForce", string(o.TimeInForce))

	case *domain.StopOrder:
		p.Add("symbol", o.Symbol)
		p.Add("side", string(o.Side))
		p.Add("type", "STOP")
		p.Add("quantity", o.Quantity.String())
		p.Add("stopPrice", o.StopPrice.String())
		// price is the limit execution price once the stop triggers.
		p.Add("price", o.LimitPrice.String())
		p.Add("timeInForce", string(o.TimeInForce))

	default:
		return nil, fmt.Errorf("unsupported order request type %T", req)
	}

	return p, nil
}
