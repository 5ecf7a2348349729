package handlers

import "github.com/gin-gonic/gin"

// RouteGuards are the auth middlewares handlers attach to their groups.
type RouteGuards struct {
	Session    gin.HandlerFunc
	ServiceKey gin.HandlerFunc
}

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	NotificationHandler *NotificationHandler
	PrescriptionHandler *PrescriptionHandler
	ResponseHandler     *ResponseHandler
	HealthHandler       *HealthHandler
}
