package payments

import "context"

type OpenOrderRequest struct {
	// Gateway minor units (paise for INR).
	AmountMinor int64
	Currency    string
	// Our reference passed to the gateway for reconciliation.
	ReceiptRef string
	Notes      map[string]string
}

type OpenOrderResponse struct {
	OrderID string
}

// Gateway opens payment orders with the external processor. The rest of the
// gateway interaction (checkout, capture) happens client-side; this core only
// sees the resulting callback triple.
type Gateway interface {
	Name() string
	OpenOrder(ctx context.Context, req OpenOrderRequest) (OpenOrderResponse, error)
}
