package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationTypePharmacy = "pharmacy"
	NotificationTypeOrder    = "order"
)

type Notification struct {
	BaseModel
	UserID  string `gorm:"type:varchar(64);not null;index:idx_notifications_user_read,priority:1"`
	Type    string `gorm:"type:varchar(50);not null;default:'pharmacy'"`
	Title   string `gorm:"not null"`
	Message string `gorm:"not null"`
	Data    datatypes.JSON
	IsRead  bool `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2"`
	ReadAt  *time.Time
}
