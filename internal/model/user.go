package model

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleAdmin = "admin" // full management rights
	RoleUser  = "user"  // scoped to own tasks
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Email          string    `gorm:"uniqueIndex;not null"`
	HashedPassword string    `gorm:"not null"`
	Name           string    `gorm:"not null"`
	Role           string    `gorm:"not null;default:'user';check:role IN ('admin', 'user')"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}
