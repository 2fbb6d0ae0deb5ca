package bookings

import "time"

const (
	StatusConfirmed = "CONFIRMED"
	StatusUsed      = "USED"
	StatusExpired   = "EXPIRED"
	StatusCancelled = "CANCELLED"
)

// Booking is a single-date gym entitlement. Rows are never deleted; the table
// is an append-only audit trail mutated only by redemption and the expiry
// sweep.
type Booking struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	BookingCode string    `gorm:"type:varchar(16);not null;uniqueIndex:ux_bookings_code"`
	UserID      string    `gorm:"type:char(36);not null;index:ix_bookings_user_id"`
	GymID       string    `gorm:"type:char(36);not null;index:ix_bookings_gym_id"`
	BookingDate time.Time `gorm:"type:date;not null"`
	// Rupees, copied from the gym's price at booking time. Immutable.
	Amount float64 `gorm:"type:decimal(10,2);not null"`
	Status string  `gorm:"type:varchar(16);not null"`
	// Data URI encoding of the booking code; falls back to the raw code when
	// QR generation fails so manual check-in keeps working.
	QRArtifact  string  `gorm:"type:mediumtext;not null"`
	ArtifactURL *string `gorm:"type:varchar(255)"`
	// The payment receipt this booking consumed, when created via the paid path.
	ReceiptID *string `gorm:"type:char(36)"`

	UsedAt    *time.Time `gorm:"type:datetime(3)"`
	CreatedAt time.Time  `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time  `gorm:"type:datetime(3);not null"`
}

func (Booking) TableName() string { return "bookings" }

func (b Booking) Terminal() bool {
	return b.Status == StatusUsed || b.Status == StatusExpired || b.Status == StatusCancelled
}

// RedemptionResult is the soft outcome of a check-in attempt. Failed
// redemptions are an expected, frequent outcome the door UI renders inline,
// so they are data rather than errors.
type RedemptionResult struct {
	Valid   bool     `json:"valid"`
	Message string   `json:"message"`
	Booking *Booking `json:"booking,omitempty"`
}
