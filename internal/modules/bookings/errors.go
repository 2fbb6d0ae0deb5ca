package bookings

import "errors"

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrDuplicateCode      = errors.New("duplicate booking code")
	ErrReceiptUnavailable = errors.New("payment receipt missing or already consumed")
)
