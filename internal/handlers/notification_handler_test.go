package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"pharmacy_backend/internal/auth"
	"pharmacy_backend/internal/middleware"
	"pharmacy_backend/internal/models"
	"pharmacy_backend/test/apitest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, body string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), v), body)
}

func seedNotification(t *testing.T, ts *apitest.TestServer, id, owner string, read bool) {
	t.Helper()
	require.NoError(t, ts.DB.Create(&models.Notification{
		BaseModel: models.BaseModel{ID: id, CreatedAt: time.Now()},
		UserID:    owner,
		Type:      models.NotificationTypePharmacy,
		Title:     "title " + id,
		Message:   "message " + id,
		IsRead:    read,
	}).Error)
}

func TestNotificationRoutes_RequireSession(t *testing.T) {
	ts := apitest.NewTestServer(t)

	cases := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/notifications"},
		{http.MethodGet, "/api/v1/notifications/unread-count"},
		{http.MethodPost, "/api/v1/notifications"},
		{http.MethodPost, "/api/v1/notifications/mark-read"},
		{http.MethodPut, "/api/v1/notifications/read-all"},
		{http.MethodPut, "/api/v1/notifications/notif-1/read"},
		{http.MethodDelete, "/api/v1/notifications/notif-1"},
		{http.MethodDelete, "/api/v1/notifications"},
	}
	for _, tc := range cases {
		res, _ := ts.SendRequest(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, "%s %s", tc.method, tc.path)
	}

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/notifications", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	var errResp errorBody
	decode(t, body, &errResp)
	assert.Equal(t, "INVALID_TOKEN", errResp.Error.Code)
}

func TestNotificationRoutes_SessionCookie(t *testing.T) {
	ts := apitest.NewTestServer(t)
	seedNotification(t, ts, "notif-1", "u-1", false)

	res, body := ts.SendRequestWithHeaders(t, http.MethodGet, "/api/v1/notifications/unread-count", map[string]string{
		"Cookie": middleware.SessionCookieName + "=" + ts.Token(t, "u-1", auth.RolePatient),
	}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var count struct {
		UnreadCount int64 `json:"unread_count"`
	}
	decode(t, body, &count)
	assert.Equal(t, int64(1), count.UnreadCount)
}

func TestNotificationRoutes_UserFlow(t *testing.T) {
	ts := apitest.NewTestServer(t)
	token := ts.Token(t, "u-1", auth.RolePatient)

	seedNotification(t, ts, "notif-1", "u-1", false)
	seedNotification(t, ts, "notif-2", "u-1", false)
	seedNotification(t, ts, "foreign", "u-2", false)

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var list struct {
		Notifications []struct {
			ID     string `json:"id"`
			UserID string `json:"user_id"`
			Read   bool   `json:"read"`
		} `json:"notifications"`
		Total int64 `json:"total"`
	}
	decode(t, body, &list)
	assert.Equal(t, int64(2), list.Total)
	for _, n := range list.Notifications {
		assert.Equal(t, "u-1", n.UserID)
	}

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/notifications/mark-read", token, map[string]string{"id": "notif-1"})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var n models.Notification
	require.NoError(t, ts.DB.First(&n, "id = ?", "notif-1").Error)
	assert.True(t, n.IsRead)

	// foreign ids are a silent no-op
	res, _ = ts.SendRequest(t, http.MethodPut, "/api/v1/notifications/foreign/read", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/notifications/foreign", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	var foreign models.Notification
	require.NoError(t, ts.DB.First(&foreign, "id = ?", "foreign").Error)
	assert.Equal(t, "u-2", foreign.UserID)
	assert.False(t, foreign.IsRead)

	res, _ = ts.SendRequest(t, http.MethodPut, "/api/v1/notifications/read-all", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"unread_count":0}`, body)

	res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/notifications", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var remaining []string
	require.NoError(t, ts.DB.Model(&models.Notification{}).Pluck("id", &remaining).Error)
	assert.Equal(t, []string{"foreign"}, remaining)
}

func TestNotificationRoutes_MarkReadRequiresID(t *testing.T) {
	ts := apitest.NewTestServer(t)
	token := ts.Token(t, "u-1", auth.RolePatient)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/notifications/mark-read", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/notifications/mark-read", token, map[string]string{"id": "  "})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestNotificationRoutes_CreateSelfIgnoresBodyOwner(t *testing.T) {
	ts := apitest.NewTestServer(t)
	token := ts.Token(t, "u-1", auth.RolePatient)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/notifications", token, map[string]interface{}{
		"userId":  "u-2",
		"title":   "Reminder",
		"message": "Pick up your order",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var created struct {
		UserID string `json:"user_id"`
		Type   string `json:"type"`
		Read   bool   `json:"read"`
	}
	decode(t, body, &created)
	assert.Equal(t, "u-1", created.UserID)
	assert.Equal(t, "pharmacy", created.Type)
	assert.False(t, created.Read)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/notifications", token, map[string]interface{}{"title": "no message"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestNotificationRoutes_CreatePrivileged(t *testing.T) {
	ts := apitest.NewTestServer(t)
	path := "/api/v1/notifications/create-admin"
	payload := map[string]string{"user_id": "p1", "title": "t", "message": "m"}

	res, body := ts.SendRequest(t, http.MethodPost, path, "", payload)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode, body)

	// a valid session does not stand in for the service credential
	res, _ = ts.SendRequest(t, http.MethodPost, path, ts.Token(t, "adm", auth.RoleAdmin), payload)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.SendRequestWithHeaders(t, http.MethodPost, path, map[string]string{middleware.ServiceKeyHeader: "wrong"}, payload)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body = ts.SendRequestWithHeaders(t, http.MethodPost, path, map[string]string{middleware.ServiceKeyHeader: apitest.TestServiceKey}, payload)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var created struct {
		UserID  string `json:"user_id"`
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	decode(t, body, &created)
	assert.Equal(t, "p1", created.UserID)
	assert.Equal(t, "t", created.Title)
	assert.Equal(t, "m", created.Message)

	res, _ = ts.SendRequestWithHeaders(t, http.MethodPost, path, map[string]string{middleware.ServiceKeyHeader: apitest.TestServiceKey},
		map[string]string{"title": "t", "message": "m"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestNotificationRoutes_CreatePrivilegedNotConfigured(t *testing.T) {
	cfg := apitest.TestConfig(t)
	cfg.Notifications.ServiceKey = ""
	ts := apitest.NewTestServerWithConfig(t, cfg)

	res, body := ts.SendRequestWithHeaders(t, http.MethodPost, "/api/v1/notifications/create-admin",
		map[string]string{middleware.ServiceKeyHeader: "anything"},
		map[string]string{"user_id": "p1", "title": "t", "message": "m"})
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

	var errResp errorBody
	decode(t, body, &errResp)
	assert.Equal(t, "MISCONFIGURED", errResp.Error.Code)
}
