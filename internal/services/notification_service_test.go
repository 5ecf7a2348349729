package services_test

import (
	"context"
	"math"
	"net/http"
	"sync"
	"testing"
	"time"

	"pharmacy_backend/internal/auth"
	"pharmacy_backend/internal/cache"
	"pharmacy_backend/internal/models"
	"pharmacy_backend/internal/repositories"
	"pharmacy_backend/internal/services"
	"pharmacy_backend/internal/services/dto"
	"pharmacy_backend/pkg/apperrors"
	"pharmacy_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const serviceKey = "svc-key"

// fakeCounter is an in-memory UnreadCounter that records invalidations.
type fakeCounter struct {
	mu          sync.Mutex
	values      map[string]int64
	generations map[string]int64
	invalidated []string
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{values: map[string]int64{}, generations: map[string]int64{}}
}

func (f *fakeCounter) Get(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[userID]
	if !ok {
		return 0, cache.ErrMiss
	}
	return v, nil
}

func (f *fakeCounter) Generation(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generations[userID], nil
}

func (f *fakeCounter) Set(_ context.Context, userID string, generation, count int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generations[userID] != generation {
		return nil
	}
	f.values[userID] = count
	return nil
}

func (f *fakeCounter) Invalidate(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, userID)
	f.generations[userID]++
	f.invalidated = append(f.invalidated, userID)
	return nil
}

func (f *fakeCounter) Close() error { return nil }

func newNotificationService(unread cache.UnreadCounter) services.NotificationService {
	return services.NewNotificationService(
		repositories.NewNotificationRepository(),
		auth.NewServiceKeyVerifier(serviceKey, ""),
		unread,
		"",
	)
}

func requireAppError(t *testing.T, err error, status int) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T", err)
	assert.Equal(t, status, appErr.HTTPCode)
	return appErr
}

func TestNotificationService_EmptyCallerFailsBeforeStore(t *testing.T) {
	svc := newNotificationService(nil)
	ctx := context.Background()

	// a nil db would panic if any of these reached the repository
	_, err := svc.List(ctx, nil, "", 1, 20)
	requireAppError(t, err, http.StatusUnauthorized)

	_, err = svc.UnreadCount(ctx, nil, "")
	requireAppError(t, err, http.StatusUnauthorized)

	requireAppError(t, svc.MarkAsRead(ctx, nil, "", "notif-1"), http.StatusUnauthorized)
	requireAppError(t, svc.MarkAllAsRead(ctx, nil, ""), http.StatusUnauthorized)
	requireAppError(t, svc.Delete(ctx, nil, "", "notif-1"), http.StatusUnauthorized)
	requireAppError(t, svc.DeleteAll(ctx, nil, ""), http.StatusUnauthorized)

	_, err = svc.CreateSelf(ctx, nil, "", &dto.CreateNotificationRequest{Title: "t", Message: "m"})
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestNotificationService_CreateSelfForcesOwnerAndDefaultsType(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := newNotificationService(nil)

	created, err := svc.CreateSelf(context.Background(), db, "u-1", &dto.CreateNotificationRequest{
		UserID:  "someone-else",
		Title:   "  Hello ",
		Message: "World",
		Data:    map[string]interface{}{"prescription_id": "rx-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "u-1", created.UserID)
	assert.Equal(t, models.NotificationTypePharmacy, created.Type)
	assert.Equal(t, "Hello", created.Title)
	assert.False(t, created.Read)
	assert.JSONEq(t, `{"prescription_id":"rx-1"}`, string(created.Data))

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, "u-1", stored.UserID)
}

func TestNotificationService_CreateSelfValidatesFields(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := newNotificationService(nil)
	ctx := context.Background()

	_, err := svc.CreateSelf(ctx, db, "u-1", &dto.CreateNotificationRequest{Title: " ", Message: "m"})
	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)

	_, err = svc.CreateSelf(ctx, db, "u-1", &dto.CreateNotificationRequest{Title: "t"})
	requireAppError(t, err, http.StatusBadRequest)

	_, err = svc.CreateSelf(ctx, db, "u-1", &dto.CreateNotificationRequest{Title: "t", Message: "m", Type: "Bad Type!"})
	requireAppError(t, err, http.StatusBadRequest)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestNotificationService_CreatePrivilegedCredentialChecks(t *testing.T) {
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	req := &dto.CreatePrivilegedNotificationRequest{UserID: "p1", Title: "t", Message: "m"}

	svc := newNotificationService(nil)

	_, err := svc.CreatePrivileged(ctx, db, "", req)
	requireAppError(t, err, http.StatusUnauthorized)

	_, err = svc.CreatePrivileged(ctx, db, "wrong", req)
	requireAppError(t, err, http.StatusForbidden)

	unconfigured := services.NewNotificationService(
		repositories.NewNotificationRepository(),
		auth.NewServiceKeyVerifier("", ""),
		nil,
		"",
	)
	_, err = unconfigured.CreatePrivileged(ctx, db, serviceKey, req)
	appErr := requireAppError(t, err, http.StatusInternalServerError)
	assert.Equal(t, apperrors.CodeMisconfigured, appErr.Code)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestNotificationService_CreatePrivilegedChecksCredentialBeforeBody(t *testing.T) {
	svc := newNotificationService(nil)

	_, err := svc.CreatePrivileged(context.Background(), nil, "wrong", &dto.CreatePrivilegedNotificationRequest{})
	requireAppError(t, err, http.StatusForbidden)
}

func TestNotificationService_CreatePrivilegedOwnedByTarget(t *testing.T) {
	db := helpers.NewTestDB(t)
	unread := newFakeCounter()
	svc := newNotificationService(unread)

	created, err := svc.CreatePrivileged(context.Background(), db, serviceKey,
		&dto.CreatePrivilegedNotificationRequest{UserID: "p1", Title: "t", Message: "m"})
	require.NoError(t, err)

	assert.Equal(t, "p1", created.UserID)
	assert.Equal(t, "t", created.Title)
	assert.Equal(t, "m", created.Message)
	assert.False(t, created.Read)
	assert.Contains(t, unread.invalidated, "p1")

	_, err = svc.CreatePrivileged(context.Background(), db, serviceKey,
		&dto.CreatePrivilegedNotificationRequest{Title: "t", Message: "m"})
	requireAppError(t, err, http.StatusBadRequest)
}

func TestNotificationService_UnreadCountUsesCache(t *testing.T) {
	db := helpers.NewTestDB(t)
	unread := newFakeCounter()
	svc := newNotificationService(unread)
	ctx := context.Background()

	for _, id := range []string{"n-1", "n-2"} {
		require.NoError(t, db.Create(&models.Notification{
			BaseModel: models.BaseModel{ID: id},
			UserID:    "u-1",
			Title:     "t",
			Message:   "m",
		}).Error)
	}

	count, err := svc.UnreadCount(ctx, db, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	cached, err := unread.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cached)

	// served from cache while the store changes underneath
	require.NoError(t, db.Model(&models.Notification{}).Where("id = ?", "n-2").Update("is_read", true).Error)
	count, err = svc.UnreadCount(ctx, db, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkAsRead(ctx, db, "u-1", "n-1"))
	assert.Contains(t, unread.invalidated, "u-1")

	count, err = svc.UnreadCount(ctx, db, "u-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

// countHookRepository runs onCount once, after the unread rows were counted
// and before the count is returned to the service.
type countHookRepository struct {
	repositories.NotificationRepository
	onCount func()
}

func (r *countHookRepository) CountUnread(db *gorm.DB, userID string) (int64, error) {
	count, err := r.NotificationRepository.CountUnread(db, userID)
	if r.onCount != nil {
		hook := r.onCount
		r.onCount = nil
		hook()
	}
	return count, err
}

func TestNotificationService_UnreadCountDropsCountRacingAWrite(t *testing.T) {
	db := helpers.NewTestDB(t)
	unread := newFakeCounter()
	repo := &countHookRepository{NotificationRepository: repositories.NewNotificationRepository()}
	svc := services.NewNotificationService(repo, auth.NewServiceKeyVerifier(serviceKey, ""), unread, "")
	ctx := context.Background()

	// a delivery lands while the badge count is being computed
	repo.onCount = func() {
		_, err := svc.CreatePrivileged(ctx, db, serviceKey,
			&dto.CreatePrivilegedNotificationRequest{UserID: "u-1", Title: "offer", Message: "m"})
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(ctx, db, "u-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = unread.Get(ctx, "u-1")
	assert.ErrorIs(t, err, cache.ErrMiss)

	count, err = svc.UnreadCount(ctx, db, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNotificationService_MutationsAreOwnerScoped(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := newNotificationService(nil)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Notification{
		BaseModel: models.BaseModel{ID: "notif-1"},
		UserID:    "u-2",
		Title:     "t",
		Message:   "m",
	}).Error)

	require.NoError(t, svc.MarkAsRead(ctx, db, "u-1", "notif-1"))
	require.NoError(t, svc.Delete(ctx, db, "u-1", "notif-1"))
	require.NoError(t, svc.MarkAllAsRead(ctx, db, "u-1"))
	require.NoError(t, svc.DeleteAll(ctx, db, "u-1"))

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", "notif-1").Error)
	assert.False(t, stored.IsRead)

	requireAppError(t, svc.MarkAsRead(ctx, db, "u-1", ""), http.StatusBadRequest)
}

func TestNotificationService_ListNormalizesPaging(t *testing.T) {
	db := helpers.NewTestDB(t)
	svc := newNotificationService(nil)
	base := time.Now().Add(-time.Hour)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, db.Create(&models.Notification{
			BaseModel: models.BaseModel{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)},
			UserID:    "u-1",
			Title:     "t",
			Message:   "m",
		}).Error)
	}

	list, err := svc.List(context.Background(), db, "u-1", 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 100, list.PageSize)
	assert.Equal(t, int64(3), list.Total)
	require.Len(t, list.Notifications, 3)
	assert.Equal(t, "c", list.Notifications[0].ID)

	far, err := svc.List(context.Background(), db, "u-1", math.MaxInt, 20)
	require.NoError(t, err)
	assert.Empty(t, far.Notifications)
	assert.Equal(t, int64(3), far.Total)
	assert.False(t, far.HasMore)
}
