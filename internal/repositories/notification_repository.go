package repositories

import (
	"time"

	"pharmacy_backend/internal/logger"
	"pharmacy_backend/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository is the row-store behind the notification gateway.
// Every caller-scoped method takes the owner id and includes
// "user_id = ?" in its predicate; callers never get rows they do not own.
type NotificationRepository interface {
	Create(db *gorm.DB, notification *models.Notification) error

	// ListByOwner returns one page ordered newest first, plus the total count.
	ListByOwner(db *gorm.DB, ownerID string, page, pageSize int) ([]models.Notification, int64, error)
	CountUnread(db *gorm.DB, ownerID string) (int64, error)

	// The mutating methods return the number of rows affected. Zero is not
	// an error: the row may not exist or may belong to someone else.
	MarkAsRead(db *gorm.DB, ownerID, notificationID string) (int64, error)
	MarkAllAsRead(db *gorm.DB, ownerID string) (int64, error)
	Delete(db *gorm.DB, ownerID, notificationID string) (int64, error)
	DeleteAll(db *gorm.DB, ownerID string) (int64, error)

	// DeleteReadOlderThan is the retention sweep. Not caller-scoped.
	DeleteReadOlderThan(db *gorm.DB, cutoff time.Time) (int64, error)
}

type notificationRepository struct{}

func NewNotificationRepository() NotificationRepository {
	return &notificationRepository{}
}

const notificationsTable = "notifications"

func (r *notificationRepository) Create(db *gorm.DB, notification *models.Notification) error {
	start := time.Now()
	err := translateError(db.Create(notification).Error)
	logger.DBLog("create", notificationsTable, time.Since(start), err)
	return err
}

func (r *notificationRepository) ListByOwner(db *gorm.DB, ownerID string, page, pageSize int) ([]models.Notification, int64, error) {
	start := time.Now()

	var total int64
	if err := db.Model(&models.Notification{}).
		Where("user_id = ?", ownerID).
		Count(&total).Error; err != nil {
		logger.DBLog("count", notificationsTable, time.Since(start), err)
		return nil, 0, err
	}

	notifications := make([]models.Notification, 0)
	err := db.Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&notifications).Error
	logger.DBLog("list", notificationsTable, time.Since(start), err)
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *notificationRepository) CountUnread(db *gorm.DB, ownerID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", ownerID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAsRead(db *gorm.DB, ownerID, notificationID string) (int64, error) {
	result := db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, ownerID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) MarkAllAsRead(db *gorm.DB, ownerID string) (int64, error) {
	result := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", ownerID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) Delete(db *gorm.DB, ownerID, notificationID string) (int64, error) {
	result := db.Where("id = ? AND user_id = ?", notificationID, ownerID).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) DeleteAll(db *gorm.DB, ownerID string) (int64, error) {
	result := db.Where("user_id = ?", ownerID).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) DeleteReadOlderThan(db *gorm.DB, cutoff time.Time) (int64, error) {
	start := time.Now()
	result := db.Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	logger.DBLog("delete_read_older_than", notificationsTable, time.Since(start), result.Error)
	return result.RowsAffected, result.Error
}
