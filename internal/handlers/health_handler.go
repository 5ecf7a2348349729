package handlers

import (
	"context"
	"net/http"
	"time"

	"pharmacy_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// Pinger is implemented by optional backends such as the Redis unread cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	*BaseHandler
	cache Pinger
}

// NewHealthHandler takes a nil cache when none is configured.
func NewHealthHandler(base *BaseHandler, cache Pinger) *HealthHandler {
	return &HealthHandler{BaseHandler: base, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.Health)
}

// Health godoc
// @Summary Liveness, database and cache check
// @Description The cache is optional; a cache outage is reported but does not fail the check.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := h.GetDB(c).DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "up"
		if err := h.cache.Ping(ctx); err != nil {
			logger.CtxWarn(ctx, "unread cache ping failed", "error", err.Error())
			cacheStatus = "down"
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up", "cache": cacheStatus})
}
