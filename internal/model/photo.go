package model

import (
	"time"

	"github.com/google/uuid"
)

type Photo struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TaskID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ImageURL   string    `gorm:"not null"`
	Caption    string
	UploadedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	Uploader User `gorm:"foreignKey:UploadedBy"`
}
