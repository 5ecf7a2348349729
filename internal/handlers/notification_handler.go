package handlers

import (
	"net/http"

	"pharmacy_backend/internal/middleware"
	"pharmacy_backend/internal/services"
	"pharmacy_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	*BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(base *BaseHandler, notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         base,
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup, guards RouteGuards) {
	// Privileged path: service credential only, no session.
	r.POST("/notifications/create-admin", guards.ServiceKey, h.CreatePrivileged)

	notifications := r.Group("/notifications")
	notifications.Use(guards.Session)
	{
		notifications.GET("", h.List)
		notifications.POST("", h.Create)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.POST("/mark-read", h.MarkReadByBody)
		notifications.PUT("/read-all", h.MarkAllAsRead)
		notifications.PUT("/:notificationId/read", h.MarkAsRead)
		notifications.DELETE("/:notificationId", h.Delete)
		notifications.DELETE("", h.DeleteAll)
	}
}

// List godoc
// @Summary List own notifications
// @Description Newest first. Only the caller's notifications are returned.
// @Tags notifications
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.NotificationListResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)

	response, err := h.notificationService.List(c.Request.Context(), h.GetDB(c), userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UnreadCount godoc
// @Summary Count own unread notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} dto.UnreadCountResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UnreadCountResponse{UnreadCount: count})
}

// Create godoc
// @Summary Create a notification for yourself
// @Description The owner is always the caller; a userId in the body is ignored.
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body dto.CreateNotificationRequest true "Notification"
// @Success 200 {object} dto.NotificationResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateNotificationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	notification, err := h.notificationService.CreateSelf(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notification)
}

// CreatePrivileged godoc
// @Summary Create a notification for any user
// @Description Server-to-server path used by the delivery side-channel.
// @Tags notifications
// @Accept json
// @Produce json
// @Param X-Service-Key header string true "Service credential"
// @Param request body dto.CreatePrivilegedNotificationRequest true "Notification"
// @Success 200 {object} dto.NotificationResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse "Credential missing"
// @Failure 403 {object} apperrors.ErrorResponse "Credential wrong"
// @Failure 500 {object} apperrors.ErrorResponse "Credential not configured"
// @Router /api/v1/notifications/create-admin [post]
func (h *NotificationHandler) CreatePrivileged(c *gin.Context) {
	var req dto.CreatePrivilegedNotificationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	credential := c.GetHeader(middleware.ServiceKeyHeader)
	notification, err := h.notificationService.CreatePrivileged(c.Request.Context(), h.GetDB(c), credential, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notification)
}

// MarkReadByBody godoc
// @Summary Mark one notification read
// @Description No-op for ids the caller does not own.
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body dto.MarkReadRequest true "Notification id"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/notifications/mark-read [post]
func (h *NotificationHandler) MarkReadByBody(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.MarkReadRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	h.markAsRead(c, userID, req.ID)
}

// MarkAsRead godoc
// @Summary Mark one notification read
// @Tags notifications
// @Produce json
// @Param notificationId path string true "Notification id"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/notifications/{notificationId}/read [put]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	h.markAsRead(c, userID, c.Param("notificationId"))
}

func (h *NotificationHandler) markAsRead(c *gin.Context, userID, notificationID string) {
	if err := h.notificationService.MarkAsRead(c.Request.Context(), h.GetDB(c), userID, notificationID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Notification marked as read"})
}

// MarkAllAsRead godoc
// @Summary Mark all own notifications read
// @Tags notifications
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/notifications/read-all [put]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), h.GetDB(c), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "All notifications marked as read"})
}

// Delete godoc
// @Summary Delete one notification
// @Description No-op for ids the caller does not own.
// @Tags notifications
// @Produce json
// @Param notificationId path string true "Notification id"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/notifications/{notificationId} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), h.GetDB(c), userID, c.Param("notificationId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Notification deleted"})
}

// DeleteAll godoc
// @Summary Delete all own notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/notifications [delete]
func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.notificationService.DeleteAll(c.Request.Context(), h.GetDB(c), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "All notifications deleted"})
}
