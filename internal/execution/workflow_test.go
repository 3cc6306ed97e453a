package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"primetrade/internal/domain"
	"primetrade/internal/infra/binance"
)

type fakeAPI struct {
	placeParams *binance.Params
	placeResult domain.OrderResult
	placeErr    error

	getCalled  bool
	getSymbol  string
	getOrderID int64
	getResult  domain.OrderResult
	getErr     error
}

func (f *fakeAPI) PlaceOrder(ctx context.Context, params *binance.Params) (domain.OrderResult, error) {
	f.placeParams = params
	return f.placeResult, f.placeErr
}

func (f *fakeAPI) GetOrder(ctx context.Context, symbol string, orderID int64) (domain.OrderResult, error) {
	f.getCalled = true
	f.getSymbol = symbol
	f.getOrderID = orderID
	return f.getResult, f.getErr
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestWorkflow(api OrderAPI) *Workflow {
	w := NewWorkflow(api)
	w.newClientID = func() string { return "test-client-id" }
	return w
}

func TestWireParams_Market(t *testing.T) {
	p, err := WireParams(&domain.MarketOrder{
		Symbol: "BTCUSDT", Side: domain.SideBuy, Quantity: dec("0.01"),
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "symbol=BTCUSDT&side=BUY&type=MARKET&quantity=0.01"
	if got := p.Encode(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
	if p.Has("price") || p.Has("stopPrice") || p.Has("timeInForce") {
		t.Error("market order must not carry limit/stop fields")
	}
}

func TestWireParams_Limit(t *testing.T) {
	p, err := WireParams(&domain.LimitOrder{
		Symbol: "ETHUSDT", Side: domain.SideSell, Quantity: dec("0.5"),
		Price: dec("2500"), TimeInForce: domain.TIFGoodTillCancel,
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "symbol=ETHUSDT&side=SELL&type=LIMIT&quantity=0.5&price=2500&timeInForce=GTC"
	if got := p.Encode(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestWireParams_Stop(t *testing.T) {
	p, err := WireParams(&domain.StopOrder{
		Symbol: "BNBUSDT", Side: domain.SideBuy, Quantity: dec("1"),
		StopPrice: dec("300"), LimitPrice: dec("305"), TimeInForce: domain.TIFGoodTillCancel,
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "symbol=BNBUSDT&side=BUY&type=STOP&quantity=1&stopPrice=300&price=305&timeInForce=GTC"
	if got := p.Encode(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestWorkflow_Run_ConfirmsWhenOrderIDPresent(t *testing.T) {
	api := &fakeAPI{
		placeResult: domain.OrderResult{OrderID: 12345, HasOrderID: true, Status: "NEW"},
		getResult:   domain.OrderResult{OrderID: 12345, HasOrderID: true, Status: "FILLED"},
	}
	w := newTestWorkflow(api)

	out, err := w.Run(context.Background(), &domain.MarketOrder{
		Symbol: "BTCUSDT", Side: domain.SideBuy, Quantity: dec("0.01"),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if v, _ := api.placeParams.Get("newClientOrderId"); v != "test-client-id" {
		t.Errorf("newClientOrderId = %q", v)
	}
	if !api.getCalled {
		t.Fatal("GetOrder was not called despite orderId in response")
	}
	if api.getSymbol != "BTCUSDT" || api.getOrderID != 12345 {
		t.Errorf("GetOrder(%q, %d), want (BTCUSDT, 12345)", api.getSymbol, api.getOrderID)
	}
	if !out.Confirmed || out.ConfirmedStatus != "FILLED" {
		t.Errorf("outcome = %+v, want confirmed FILLED", out)
	}
}

func TestWorkflow_Run_SkipsConfirmationWithoutOrderID(t *testing.T) {
	api := &fakeAPI{
		placeResult: domain.OrderResult{Status: "REJECTED"},
	}
	w := newTestWorkflow(api)

	out, err := w.Run(context.Background(), &domain.MarketOrder{
		Symbol: "BTCUSDT", Side: domain.SideBuy, Quantity: dec("0.01"),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if api.getCalled {
		t.Error("GetOrder called despite missing orderId")
	}
	if out.Confirmed {
		t.Error("outcome marked confirmed without a confirmation call")
	}
	if out.Result.Status != "REJECTED" {
		t.Errorf("Status = %q", out.Result.Status)
	}
}

func TestWorkflow_Run_PlacementFailure(t *testing.T) {
	api := &fakeAPI{
		placeErr: &binance.TransportError{StatusCode: 400, Body: `{"code":-1102}`},
	}
	w := newTestWorkflow(api)

	_, err := w.Run(context.Background(), &domain.MarketOrder{
		Symbol: "BTCUSDT", Side: domain.SideBuy, Quantity: dec("0.01"),
	})

	var terr *binance.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if api.getCalled {
		t.Error("GetOrder called after a failed placement")
	}
}

func TestWorkflow_Run_ConfirmationFailureIsSecondary(t *testing.T) {
	api := &fakeAPI{
		placeResult: domain.OrderResult{OrderID: 777, HasOrderID: true, Status: "NEW"},
		getErr:      &binance.TransportError{Cause: errors.New("timeout")},
	}
	w := newTestWorkflow(api)

	out, err := w.Run(context.Background(), &domain.LimitOrder{
		Symbol: "ETHUSDT", Side: domain.SideSell, Quantity: dec("0.5"),
		Price: dec("2500"), TimeInForce: domain.TIFGoodTillCancel,
	})
	if err != nil {
		t.Fatalf("Run failed: %v, confirmation failure must not fail the run", err)
	}
	if out.ConfirmErr == nil {
		t.Error("ConfirmErr not recorded")
	}
	if out.Confirmed {
		t.Error("outcome marked confirmed despite confirmation failure")
	}
	if out.Result.OrderID != 777 {
		t.Errorf("placement result lost: %+v", out.Result)
	}
}

func TestWorkflow_Run_ValidationAbortsBeforeNetwork(t *testing.T) {
	api := &fakeAPI{}
	w := newTestWorkflow(api)

	_, err := w.Run(context.Background(), &domain.LimitOrder{
		Symbol: "ETHUSDT", Side: domain.SideSell, Quantity: dec("0.5"),
		TimeInForce: domain.TIFGoodTillCancel, // price missing
	})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if api.placeParams != nil {
		t.Error("PlaceOrder called despite validation failure")
	}
	if api.getCalled {
		t.Error("GetOrder called despite validation failure")
	}
}
