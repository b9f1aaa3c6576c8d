package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
)

// NotificationGormRepository keeps the delivery history of outbound messages.
type NotificationGormRepository struct {
	db *gorm.DB
}

func NewNotificationGormRepository(db *gorm.DB) *NotificationGormRepository {
	return &NotificationGormRepository{db: db}
}

func (r *NotificationGormRepository) RecordNotification(
	ctx context.Context,
	n *models.Notification,
) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationGormRepository) ListByUser(
	ctx context.Context,
	userID uint,
	limit int,
) ([]models.Notification, error) {

	var items []models.Notification
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

var _ notify.NotificationLog = (*NotificationGormRepository)(nil)
