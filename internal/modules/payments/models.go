package payments

import (
	"time"

	"gorm.io/datatypes"
)

const ReceiptStatusSuccess = "success"

// PaymentOrder records a gateway order opened for a booking request. The
// amount here is computed server-side from the gym's price and is the
// authoritative value a later verification must reconcile against.
type PaymentOrder struct {
	ID             string    `gorm:"type:char(36);primaryKey"`
	GatewayOrderID string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_payment_orders_gateway_id"`
	UserID         string    `gorm:"type:char(36);not null;index:ix_payment_orders_user_id"`
	GymID          string    `gorm:"type:char(36);not null"`
	BookingDate    time.Time `gorm:"type:date;not null"`
	// Rupees; the paise conversion happens only at the gateway boundary.
	Amount   float64        `gorm:"type:decimal(10,2);not null"`
	Currency string         `gorm:"type:char(3);not null"`
	Metadata datatypes.JSON `gorm:"type:json"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (PaymentOrder) TableName() string { return "payment_orders" }

// PaymentReceipt is written once per verified payment and never updated,
// except for the one-time consumption stamp set when a booking is minted
// from it.
type PaymentReceipt struct {
	ID             string  `gorm:"type:char(36);primaryKey"`
	GatewayOrderID string  `gorm:"type:varchar(128);not null;uniqueIndex:ux_payment_receipts_order_payment,priority:1"`
	GatewayPayID   string  `gorm:"type:varchar(128);not null;uniqueIndex:ux_payment_receipts_order_payment,priority:2"`
	Signature      string  `gorm:"type:varchar(128);not null"`
	Amount         float64 `gorm:"type:decimal(10,2);not null"`
	Status         string  `gorm:"type:varchar(32);not null"`

	ConsumedAt *time.Time `gorm:"type:datetime(3)"`
	CreatedAt  time.Time  `gorm:"type:datetime(3);not null"`
}

func (PaymentReceipt) TableName() string { return "payment_receipts" }
