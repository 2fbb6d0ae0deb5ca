package users

import "time"

const (
	RoleMember = "member"
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
)

type User struct {
	ID           string `gorm:"type:char(36);primaryKey"`
	Name         string `gorm:"type:varchar(191);not null"`
	Email        string `gorm:"type:varchar(191);not null;uniqueIndex:ux_users_email"`
	PasswordHash string `gorm:"type:varchar(128);not null"`
	Role         string `gorm:"type:varchar(16);not null;default:member"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (User) TableName() string { return "users" }
