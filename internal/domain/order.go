package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide normalizes and validates an order side string.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(s)) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	default:
		return "", &ValidationError{Field: "side", Reason: fmt.Sprintf("must be BUY or SELL, got %q", s)}
	}
}

// TimeInForce controls how long an order stays eligible for matching.
type TimeInForce string

const (
	TIFGoodTillCancel    TimeInForce = "GTC"
	TIFImmediateOrCancel TimeInForce = "IOC"
	TIFFillOrKill        TimeInForce = "FOK"
)

// ParseTimeInForce normalizes and validates a time-in-force string.
func ParseTimeInForce(s string) (TimeInForce, error) {
	switch TimeInForce(strings.ToUpper(s)) {
	case TIFGoodTillCancel:
		return TIFGoodTillCancel, nil
	case TIFImmediateOrCancel:
		return TIFImmediateOrCancel, nil
	case TIFFillOrKill:
		return TIFFillOrKill, nil
	default:
		return "", &ValidationError{Field: "timeInForce", Reason: fmt.Sprintf("must be GTC, IOC or FOK, got %q", s)}
	}
}

// ValidationError reports a bad or missing order parameter.
// It is always raised before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// OrderRequest is the tagged union over the supported order kinds.
// Each kind carries exactly the fields the exchange requires for it,
// so invalid field combinations cannot be constructed.
type OrderRequest interface {
	// Validate checks the kind-specific invariants.
	Validate() error

	isOrderRequest()
}

// MarketOrder executes immediately at the best available price.
type MarketOrder struct {
	Symbol   string
	Side     Side
	Quantity decimal.Decimal
}

// LimitOrder rests on the book at Price until matched or expired per TimeInForce.
type LimitOrder struct {
	Symbol      string
	Side        Side
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	TimeInForce TimeInForce
}

// StopOrder becomes a limit order at LimitPrice once StopPrice is touched.
type StopOrder struct {
	Symbol      string
	Side        Side
	Quantity    decimal.Decimal
	StopPrice   decimal.Decimal
	LimitPrice  decimal.Decimal
	TimeInForce TimeInForce
}

func (*MarketOrder) isOrderRequest() {}
func (*LimitOrder) isOrderRequest()  {}
func (*StopOrder) isOrderRequest()   {}

func (o *MarketOrder) Validate() error {
	return validateCommon(o.Symbol, o.Side, o.Quantity)
}

func (o *LimitOrder) Validate() error {
	if err := validateCommon(o.Symbol, o.Side, o.Quantity); err != nil {
		return err
	}
	if !o.Price.IsPositive() {
		return &ValidationError{Field: "price", Reason: "LIMIT order requires price > 0"}
	}
	return validateTIF(o.TimeInForce)
}

func (o *StopOrder) Validate() error {
	if err := validateCommon(o.Symbol, o.Side, o.Quantity); err != nil {
		return err
	}
	if !o.StopPrice.IsPositive() {
		return &ValidationError{Field: "stopPrice", Reason: "STOP order requires stopPrice > 0"}
	}
	if !o.LimitPrice.IsPositive() {
		return &ValidationError{Field: "price", Reason: "STOP order requires a limit price > 0"}
	}
	return validateTIF(o.TimeInForce)
}

func validateCommon(symbol string, side Side, qty decimal.Decimal) error {
	if symbol == "" {
		return &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if symbol != strings.ToUpper(symbol) {
		return &ValidationError{Field: "symbol", Reason: "must be uppercase"}
	}
	if side != SideBuy && side != SideSell {
		return &ValidationError{Field: "side", Reason: fmt.Sprintf("must be BUY or SELL, got %q", string(side))}
	}
	if !qty.IsPositive() {
		return &ValidationError{Field: "quantity", Reason: "must be > 0"}
	}
	return nil
}

func validateTIF(tif TimeInForce) error {
	switch tif {
	case TIFGoodTillCancel, TIFImmediateOrCancel, TIFFillOrKill:
		return nil
	default:
		return &ValidationError{Field: "timeInForce", Reason: fmt.Sprintf("must be GTC, IOC or FOK, got %q", string(tif))}
	}
}
