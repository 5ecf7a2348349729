package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"pharmacy_backend/internal/auth"
	"pharmacy_backend/internal/cache"
	"pharmacy_backend/internal/logger"
	"pharmacy_backend/internal/models"
	"pharmacy_backend/internal/repositories"
	"pharmacy_backend/internal/services/dto"
	"pharmacy_backend/internal/validator"
	"pharmacy_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationService is the notification access gateway. Caller-scoped
// methods take the caller's user id and fail with Unauthenticated when it
// is empty, before touching the store. CreatePrivileged is the only path
// that writes rows for someone other than the caller.
type NotificationService interface {
	List(ctx context.Context, db *gorm.DB, callerID string, page, pageSize int) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, db *gorm.DB, callerID string) (int64, error)
	MarkAsRead(ctx context.Context, db *gorm.DB, callerID, notificationID string) error
	MarkAllAsRead(ctx context.Context, db *gorm.DB, callerID string) error
	Delete(ctx context.Context, db *gorm.DB, callerID, notificationID string) error
	DeleteAll(ctx context.Context, db *gorm.DB, callerID string) error

	CreateSelf(ctx context.Context, db *gorm.DB, callerID string, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error)
	CreatePrivileged(ctx context.Context, db *gorm.DB, credential string, req *dto.CreatePrivilegedNotificationRequest) (*dto.NotificationResponse, error)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type notificationService struct {
	repo        repositories.NotificationRepository
	serviceKey  *auth.ServiceKeyVerifier
	unread      cache.UnreadCounter
	defaultType string
}

func NewNotificationService(
	repo repositories.NotificationRepository,
	serviceKey *auth.ServiceKeyVerifier,
	unread cache.UnreadCounter,
	defaultType string,
) NotificationService {
	if unread == nil {
		unread = cache.NewNoop()
	}
	if defaultType == "" {
		defaultType = models.NotificationTypePharmacy
	}
	return &notificationService{
		repo:        repo,
		serviceKey:  serviceKey,
		unread:      unread,
		defaultType: defaultType,
	}
}

// ---------------- Caller-scoped reads ----------------

func (s *notificationService) List(ctx context.Context, db *gorm.DB, callerID string, page, pageSize int) (*dto.NotificationListResponse, error) {
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated()
	}
	page, pageSize = normalizePage(page, pageSize)

	rows, total, err := s.repo.ListByOwner(db, callerID, page, pageSize)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	items := make([]*dto.NotificationResponse, 0, len(rows))
	for i := range rows {
		items = append(items, buildNotificationResponse(&rows[i]))
	}

	return &dto.NotificationListResponse{
		Notifications: items,
		Pagination:    dto.NewPagination(total, page, pageSize),
	}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, db *gorm.DB, callerID string) (int64, error) {
	if callerID == "" {
		return 0, apperrors.ErrUnauthenticated()
	}

	count, err := s.unread.Get(ctx, callerID)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.CtxWarn(ctx, "unread cache read failed", "error", err.Error())
	}

	// a write landing between the count and Set bumps the generation, and
	// Set then leaves the cache empty instead of storing a stale count
	generation, genErr := s.unread.Generation(ctx, callerID)
	if genErr != nil {
		logger.CtxWarn(ctx, "unread cache generation read failed", "error", genErr.Error())
	}

	count, err = s.repo.CountUnread(db, callerID)
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}

	if genErr == nil {
		if err := s.unread.Set(ctx, callerID, generation, count); err != nil {
			logger.CtxWarn(ctx, "unread cache write failed", "error", err.Error())
		}
	}
	return count, nil
}

// ---------------- Caller-scoped mutations ----------------

// MarkAsRead is a no-op for ids the caller does not own, so ownership cannot
// be probed through different responses.
func (s *notificationService) MarkAsRead(ctx context.Context, db *gorm.DB, callerID, notificationID string) error {
	if callerID == "" {
		return apperrors.ErrUnauthenticated()
	}
	if strings.TrimSpace(notificationID) == "" {
		return apperrors.ErrNotificationFieldRequired("id")
	}

	affected, err := s.repo.MarkAsRead(db, callerID, notificationID)
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if affected > 0 {
		s.invalidate(ctx, callerID)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, db *gorm.DB, callerID string) error {
	if callerID == "" {
		return apperrors.ErrUnauthenticated()
	}

	if _, err := s.repo.MarkAllAsRead(db, callerID); err != nil {
		return apperrors.DatabaseError(err)
	}
	s.invalidate(ctx, callerID)
	return nil
}

func (s *notificationService) Delete(ctx context.Context, db *gorm.DB, callerID, notificationID string) error {
	if callerID == "" {
		return apperrors.ErrUnauthenticated()
	}
	if strings.TrimSpace(notificationID) == "" {
		return apperrors.ErrNotificationFieldRequired("id")
	}

	affected, err := s.repo.Delete(db, callerID, notificationID)
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if affected > 0 {
		s.invalidate(ctx, callerID)
	}
	return nil
}

func (s *notificationService) DeleteAll(ctx context.Context, db *gorm.DB, callerID string) error {
	if callerID == "" {
		return apperrors.ErrUnauthenticated()
	}

	if _, err := s.repo.DeleteAll(db, callerID); err != nil {
		return apperrors.DatabaseError(err)
	}
	s.invalidate(ctx, callerID)
	return nil
}

// ---------------- Creation ----------------

// CreateSelf inserts a notification owned by the caller. req.UserID is ignored.
func (s *notificationService) CreateSelf(ctx context.Context, db *gorm.DB, callerID string, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error) {
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated()
	}
	if req == nil {
		return nil, apperrors.NewBadRequestError("Request body is required")
	}
	if req.UserID != "" && req.UserID != callerID {
		logger.CtxDebug(ctx, "ignoring foreign userId on self create", "requested_user", req.UserID)
	}

	return s.create(ctx, db, callerID, req.Title, req.Message, req.Type, req.Data)
}

// CreatePrivileged inserts a notification owned by req.UserID. The service
// credential is checked before anything else, including the body.
func (s *notificationService) CreatePrivileged(ctx context.Context, db *gorm.DB, credential string, req *dto.CreatePrivilegedNotificationRequest) (*dto.NotificationResponse, error) {
	if err := s.serviceKey.Verify(credential); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.NewBadRequestError("Request body is required")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, apperrors.ErrNotificationFieldRequired("user_id")
	}

	return s.create(ctx, db, strings.TrimSpace(req.UserID), req.Title, req.Message, req.Type, req.Data)
}

func (s *notificationService) create(ctx context.Context, db *gorm.DB, ownerID, title, message, notificationType string, data map[string]interface{}) (*dto.NotificationResponse, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" {
		return nil, apperrors.ErrNotificationFieldRequired("title")
	}
	if message == "" {
		return nil, apperrors.ErrNotificationFieldRequired("message")
	}

	notificationType = strings.TrimSpace(notificationType)
	if notificationType == "" {
		notificationType = s.defaultType
	}
	if !validator.ValidNotificationType(notificationType) {
		return nil, apperrors.ValidationError(map[string]string{"type": "Must be a lowercase slug of letters, digits and underscores (max 50)"})
	}

	var payload datatypes.JSON
	if len(data) > 0 {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, apperrors.ValidationError(map[string]string{"data": "Must be a JSON object"})
		}
		payload = datatypes.JSON(raw)
	}

	notification := &models.Notification{
		UserID:  ownerID,
		Type:    notificationType,
		Title:   title,
		Message: message,
		Data:    payload,
		IsRead:  false,
	}
	if err := s.repo.Create(db, notification); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	s.invalidate(ctx, ownerID)
	return buildNotificationResponse(notification), nil
}

// ---------------- Helpers ----------------

func (s *notificationService) invalidate(ctx context.Context, userID string) {
	if err := s.unread.Invalidate(ctx, userID); err != nil {
		logger.CtxWarn(ctx, "unread cache invalidation failed", "user", userID, "error", err.Error())
	}
}

func buildNotificationResponse(n *models.Notification) *dto.NotificationResponse {
	resp := &dto.NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Data) > 0 {
		resp.Data = json.RawMessage(n.Data)
	}
	return resp
}

// maxPage keeps (page-1)*pageSize well inside int32 for every driver.
const maxPage = math.MaxInt32 / maxPageSize

func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
