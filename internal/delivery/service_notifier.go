package delivery

import (
	"context"

	"pharmacy_backend/internal/services/dto"

	"gorm.io/gorm"
)

// PrivilegedCreator is the notification gateway's service-credential path.
type PrivilegedCreator interface {
	CreatePrivileged(ctx context.Context, db *gorm.DB, credential string, req *dto.CreatePrivilegedNotificationRequest) (*dto.NotificationResponse, error)
}

// ServiceNotifier delivers in-process through the gateway, presenting the
// configured service key exactly as a remote caller would.
type ServiceNotifier struct {
	creator    PrivilegedCreator
	db         *gorm.DB
	serviceKey string
}

func NewServiceNotifier(creator PrivilegedCreator, db *gorm.DB, serviceKey string) *ServiceNotifier {
	return &ServiceNotifier{creator: creator, db: db, serviceKey: serviceKey}
}

func (n *ServiceNotifier) Notify(ctx context.Context, msg Message) error {
	_, err := n.creator.CreatePrivileged(ctx, n.db.WithContext(ctx), n.serviceKey, privilegedRequest(msg))
	return err
}

func privilegedRequest(msg Message) *dto.CreatePrivilegedNotificationRequest {
	return &dto.CreatePrivilegedNotificationRequest{
		UserID:  msg.UserID,
		Title:   msg.Title,
		Message: msg.Body,
		Type:    msg.Type,
		Data:    msg.Data,
	}
}
