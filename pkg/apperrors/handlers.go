package apperrors

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// GinErrorHandler writes AppErrors as JSON. Non-AppErrors become a generic 500.
type GinErrorHandler struct {
	Debug bool
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}
	if appErr.HTTPCode >= 500 && !h.Debug {
		// hide store and system messages from clients
		appErr = &AppError{
			Code:     appErr.Code,
			Domain:   appErr.Domain,
			Message:  "Internal server error",
			Err:      appErr.Err,
			HTTPCode: appErr.HTTPCode,
		}
		if appErr.Code == CodeMisconfigured {
			appErr.Message = "Server misconfigured"
		}
	}

	if appErr.HTTPCode >= 500 {
		slog.Default().ErrorContext(c.Request.Context(), "server error",
			"code", appErr.Code,
			"domain", appErr.Domain,
			"error", appErr.Unwrap(),
			"path", c.Request.URL.Path,
		)
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

var defaultHandler = &GinErrorHandler{}

// SetDebug toggles exposure of 5xx messages. Set from config at startup.
func SetDebug(debug bool) {
	defaultHandler = &GinErrorHandler{Debug: debug}
}

func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
