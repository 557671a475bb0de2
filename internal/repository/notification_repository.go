package repository

import (
	"context"
	"time"

	"bakery/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByOrderID(ctx context.Context, orderID uint) ([]models.Notification, error)
	MarkAsSent(ctx context.Context, id uint) error
	MarkAsFailed(ctx context.Context, id uint, reason string) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) GetByOrderID(ctx context.Context, orderID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at").Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) MarkAsSent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Updates(map[string]interface{}{
		"sent":    true,
		"sent_at": time.Now(),
		"error":   "",
	}).Error
}

func (r *notificationRepository) MarkAsFailed(ctx context.Context, id uint, reason string) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("error", reason).Error
}
