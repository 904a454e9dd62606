package repository

import (
	"context"

	"taskhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeviceRepository struct {
	db *gorm.DB
}

type DeviceRepositoryInterface interface {
	Upsert(ctx context.Context, device *model.Device) error
	GetByUser(ctx context.Context, userID uuid.UUID) ([]model.Device, error)
}

var _ DeviceRepositoryInterface = (*DeviceRepository)(nil)

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Upsert inserts a device row or refreshes ip/last_seen_at when the
// user/user-agent pair is already known.
func (r *DeviceRepository) Upsert(ctx context.Context, device *model.Device) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "user_agent"}},
		DoUpdates: clause.AssignmentColumns([]string{"ip", "last_seen_at"}),
	}).Create(device).Error
}

func (r *DeviceRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]model.Device, error) {
	var devices []model.Device
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_seen_at DESC").
		Find(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}
