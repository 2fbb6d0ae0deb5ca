package gyms

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Gym struct {
	ID      string `gorm:"type:char(36);primaryKey"`
	OwnerID string `gorm:"type:char(36);not null;index:ix_gyms_owner_id"`
	Name    string `gorm:"type:varchar(191);not null"`
	City    string `gorm:"type:varchar(128)"`
	Address string `gorm:"type:varchar(255)"`
	// Day-pass price in rupees.
	DayPassPrice float64 `gorm:"type:decimal(10,2);not null"`
	Status       string  `gorm:"type:varchar(32);not null;default:pending"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Gym) TableName() string { return "gyms" }

func (g Gym) Approved() bool { return g.Status == StatusApproved }
