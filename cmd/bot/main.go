package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"primetrade/internal/domain"
	"primetrade/internal/execution"
	"primetrade/internal/infra"
	"primetrade/internal/infra/binance"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		symbol      = flag.String("symbol", "", "trading symbol, e.g. BTCUSDT")
		side        = flag.String("side", "", "order side: BUY or SELL")
		orderType   = flag.String("type", "", "order type: MARKET, LIMIT or STOP")
		quantity    = flag.String("quantity", "", "order quantity")
		price       = flag.String("price", "", "limit price (LIMIT/STOP)")
		stopPrice   = flag.String("stop-price", "", "stop trigger price (STOP only)")
		timeInForce = flag.String("time-in-force", "GTC", "time in force: GTC, IOC or FOK")
		apiKey      = flag.String("api-key", "", "API key (or BINANCE_API_KEY / .env)")
		apiSecret   = flag.String("api-secret", "", "API secret (or BINANCE_API_SECRET / .env)")
		baseURL     = flag.String("base-url", "", "REST base URL (default: futures testnet)")
		streamURL   = flag.String("stream-url", "", "user-data stream URL (default: futures testnet)")
		configPath  = flag.String("config", "", "path to config.yaml (default: auto-discover)")
		watch       = flag.Duration("watch", 0, "watch the user-data stream for this long after placement")
		ping        = flag.Bool("ping", false, "check connectivity (server time) and exit")
	)
	flag.Parse()

	// .env carries key material in dev setups, same as the reference
	// deployment. Real environment variables win over the file.
	infra.LoadDotEnv()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return exitUsage
	}

	consoleLevel, _ := infra.ParseLogLevel(cfg.Logging.Level)
	logDir := cfg.Logging.Dir
	if logDir == "" {
		logDir = infra.DefaultLogDir()
	}
	logger, err := infra.NewLogger(consoleLevel, logDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return exitRuntime
	}
	slog.SetDefault(logger)

	cred, err := infra.ResolveCredential(
		infra.CredentialSource{APIKey: *apiKey, APISecret: *apiSecret},
		infra.CredentialSource{APIKey: cfg.API.Binance.APIKey, APISecret: cfg.API.Binance.SecretKey},
		infra.EnvCredentialSource(),
	)
	if err != nil {
		slog.Error("credential resolution failed", "error", err)
		return exitUsage
	}

	restURL := firstNonEmpty(*baseURL, cfg.API.Binance.RestURL)
	client := binance.NewClient(cred, restURL)
	defer client.Wipe()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *ping {
		serverTime, err := client.ServerTime(ctx)
		if err != nil {
			slog.Error("ping failed", "error", err)
			return exitRuntime
		}
		fmt.Println("exchange reachable, server time:", serverTime.UTC().Format(time.RFC3339Nano))
		return exitOK
	}

	req, err := buildOrderRequest(*symbol, *side, *orderType, *quantity, *price, *stopPrice, *timeInForce)
	if err != nil {
		slog.Error("invalid order parameters", "error", err)
		return exitUsage
	}

	outcome, err := execution.NewWorkflow(client).Run(ctx, req)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			slog.Error("order rejected before dispatch", "error", err)
			return exitUsage
		}
		slog.Error("order failed", "error", err)
		return exitRuntime
	}

	printOutcome(outcome)

	if *watch > 0 && outcome.Result.HasOrderID {
		wsURL := firstNonEmpty(*streamURL, cfg.API.Binance.StreamURL)
		watchOrder(ctx, client, wsURL, outcome.Result.OrderID, *watch)
	}

	return exitOK
}

func loadConfig(path string) (*infra.Config, error) {
	if path != "" {
		return infra.LoadConfig(path, true)
	}
	return infra.LoadConfig(infra.ResolveConfigPath(), false)
}

// buildOrderRequest maps the flag surface onto the order union.
// Absent numeric flags become zero values; Validate reports them with
// order-kind-specific messages.
func buildOrderRequest(symbol, side, orderType, quantity, price, stopPrice, timeInForce string) (domain.OrderRequest, error) {
	parsedSide, err := domain.ParseSide(side)
	if err != nil {
		return nil, err
	}
	tif, err := domain.ParseTimeInForce(timeInForce)
	if err != nil {
		return nil, err
	}

	qty, err := parseDecimalFlag(quantity, "quantity")
	if err != nil {
		return nil, err
	}
	limitPrice, err := parseDecimalFlag(price, "price")
	if err != nil {
		return nil, err
	}
	trigger, err := parseDecimalFlag(stopPrice, "stop-price")
	if err != nil {
		return nil, err
	}

	upper := strings.ToUpper(symbol)

	switch strings.ToUpper(orderType) {
	case "MARKET":
		return &domain.MarketOrder{Symbol: upper, Side: parsedSide, Quantity: qty}, nil
	case "LIMIT":
		return &domain.LimitOrder{
			Symbol: upper, Side: parsedSide, Quantity: qty,
			Price: limitPrice, TimeInForce: tif,
		}, nil
	case "STOP":
		return &domain.StopOrder{
			Symbol: upper, Side: parsedSide, Quantity: qty,
			StopPrice: trigger, LimitPrice: limitPrice, TimeInForce: tif,
		}, nil
	default:
		return nil, &domain.ValidationError{Field: "type", Reason: fmt.Sprintf("must be MARKET, LIMIT or STOP, got %q", orderType)}
	}
}

func parseDecimalFlag(value, name string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &domain.ValidationError{Field: name, Reason: fmt.Sprintf("not a number: %q", value)}
	}
	return d, nil
}

func printOutcome(outcome *execution.Outcome) {
	fmt.Println()
	fmt.Println("----- ORDER RESULT -----")
	fmt.Println(string(outcome.Result.Raw))

	switch {
	case outcome.Confirmed:
		fmt.Println("Order Status:", outcome.ConfirmedStatus)
	case outcome.ConfirmErr != nil:
		fmt.Println("Order Status: unconfirmed (see log)")
	}
}

// watchOrder follows the user-data stream until the placed order goes
// terminal, the watch window elapses, or the process is interrupted.
func watchOrder(ctx context.Context, client *binance.Client, streamURL string, orderID int64, window time.Duration) {
	watchCtx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	terminal := make(chan struct{})
	var once sync.Once

	watcher := binance.NewUserStreamWatcher(client, streamURL, func(u binance.OrderUpdate) {
		if u.OrderID != orderID {
			return
		}
		slog.Info("order update",
			"symbol", u.Symbol, "status", u.Status,
			"filled", u.FilledQty, "avgPrice", u.AvgPrice)
		if u.IsTerminal() {
			once.Do(func() { close(terminal) })
		}
	})

	if err := watcher.Start(watchCtx); err != nil {
		slog.Warn("user-data stream unavailable", "error", err)
		return
	}
	defer watcher.Stop()

	select {
	case <-watchCtx.Done():
	case <-terminal:
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
