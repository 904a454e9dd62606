package model

import (
	"time"

	"github.com/google/uuid"
)

// Device records where a user last logged in from. One row per
// user/user-agent pair, refreshed on every successful login.
type Device struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_devices_user_agent"`
	UserAgent  string    `gorm:"not null;uniqueIndex:idx_devices_user_agent"`
	IP         string
	LastSeenAt time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	User User `gorm:"foreignKey:UserID"`
}
