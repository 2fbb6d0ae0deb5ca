package events

// Routing keys published on the topic exchange.
const (
	BookingConfirmed = "booking.confirmed"
	BookingRedeemed  = "booking.redeemed"
	BookingsExpired  = "booking.expired"
)

type BookingConfirmedEvent struct {
	BookingID   string  `json:"booking_id"`
	BookingCode string  `json:"booking_code"`
	UserID      string  `json:"user_id"`
	GymID       string  `json:"gym_id"`
	BookingDate string  `json:"booking_date"`
	Amount      float64 `json:"amount"`
}

type BookingRedeemedEvent struct {
	BookingID   string `json:"booking_id"`
	BookingCode string `json:"booking_code"`
	GymID       string `json:"gym_id"`
	RedeemedAt  int64  `json:"redeemed_at"`
}

type BookingsExpiredEvent struct {
	Count   int64 `json:"count"`
	SweptAt int64 `json:"swept_at"`
}
