package domain

import "encoding/json"

// OrderResult is the exchange's view of an order after a placement or
// status call. Raw keeps the untouched response payload for display.
type OrderResult struct {
	OrderID    int64
	HasOrderID bool
	Status     string
	Raw        json.RawMessage
}
