package payments

import "errors"

var (
	ErrOrderNotFound    = errors.New("payment order not found")
	ErrReceiptNotFound  = errors.New("payment receipt not found")
	ErrDuplicateReceipt = errors.New("payment already verified")
)
