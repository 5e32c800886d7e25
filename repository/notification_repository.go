package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/KeshRD/BrightBuy-G16/models"
)

// NotificationRepository records every email attempt the consumer makes.
type NotificationRepository interface {
	Create(ctx context.Context, log *models.NotificationLog) error
}

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(ctx context.Context, log *models.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
