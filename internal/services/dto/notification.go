package dto

import (
	"encoding/json"
	"time"
)

// ---------------- Requests ----------------

// CreateNotificationRequest is the caller-scoped create body. UserID is
// accepted for compatibility and ignored: the owner is always the caller.
type CreateNotificationRequest struct {
	UserID  string                 `json:"userId,omitempty" validate:"-"`
	Title   string                 `json:"title" validate:"notblank,max=200"`
	Message string                 `json:"message" validate:"notblank,max=2000"`
	Type    string                 `json:"type,omitempty" validate:"omitempty,notification-type"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// CreatePrivilegedNotificationRequest creates a notification owned by UserID.
// Only reachable with the service credential.
type CreatePrivilegedNotificationRequest struct {
	UserID  string                 `json:"user_id" validate:"notblank,max=64"`
	Title   string                 `json:"title" validate:"notblank,max=200"`
	Message string                 `json:"message" validate:"notblank,max=2000"`
	Type    string                 `json:"type,omitempty" validate:"omitempty,notification-type"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

type MarkReadRequest struct {
	ID string `json:"id" validate:"notblank"`
}

// ---------------- Responses ----------------

type NotificationResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty" swaggertype:"object"`
	Read      bool            `json:"read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	Pagination
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}
