package middleware

import (
	"errors"
	"strings"

	"pharmacy_backend/internal/auth"
	"pharmacy_backend/internal/logger"
	"pharmacy_backend/pkg/apperrors"
	"pharmacy_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookieName = "session_token"
	ServiceKeyHeader  = "X-Service-Key"
)

// AuthMiddleware resolves the session caller from a bearer token or the
// session cookie. On success it stores the claims, userID and role.
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := sessionToken(c)
		if tokenStr == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			logger.CtxDebug(c.Request.Context(), "session rejected", "error", err.Error())
			if errors.Is(err, auth.ErrTokenExpired) {
				apperrors.HandleError(c, apperrors.ErrSessionExpired())
				return
			}
			apperrors.HandleError(c, apperrors.ErrInvalidSession())
			return
		}

		c.Set(string(contextkeys.CallerContextKey), claims)
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if strings.HasPrefix(header, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// ServiceKeyMiddleware guards privileged routes. It never looks at the
// session; the caller must present the server-held key in X-Service-Key.
func ServiceKeyMiddleware(verifier *auth.ServiceKeyVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := verifier.Verify(c.GetHeader(ServiceKeyHeader)); err != nil {
			logger.CtxWarn(c.Request.Context(), "service credential rejected",
				"path", c.Request.URL.Path,
				"ip", c.ClientIP(),
				"error", err.Error(),
			)
			apperrors.HandleError(c, err)
			return
		}
		c.Next()
	}
}

// RoleMiddleware allows only the listed roles. Must run after AuthMiddleware.
func RoleMiddleware(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: no role"))
			return
		}
		if !roleSet[role] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions())
			return
		}
		c.Next()
	}
}

// GetCaller returns the claims stored by AuthMiddleware, or nil.
func GetCaller(c *gin.Context) *auth.Claims {
	val, ok := c.Get(string(contextkeys.CallerContextKey))
	if !ok {
		return nil
	}
	claims, _ := val.(*auth.Claims)
	return claims
}

func GetUserID(c *gin.Context) string {
	return c.GetString("userID")
}
