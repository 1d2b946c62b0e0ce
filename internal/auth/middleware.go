package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oduggan21/reading-assistant/internal/errors"
	"github.com/oduggan21/reading-assistant/internal/logger"
)

// contextKey avoids collisions between this package's gin context keys and
// others'.
type contextKey string

const (
	UserIDKey contextKey = "user_id"
)

// Middleware validates the bearer token on incoming requests and attaches
// the resolved user ID to the request context.
type Middleware struct {
	validator TokenValidator
}

// NewMiddleware builds a Middleware around the given validator.
func NewMiddleware(validator TokenValidator) *Middleware {
	return &Middleware{validator: validator}
}

// RequireAuth validates the Authorization header (falling back to a ?token=
// query parameter for the websocket upgrade request, which can't carry
// custom headers) and attaches the resolved user ID to the context.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" && c.Request.Header.Get("Upgrade") == "websocket" {
			if token := c.Query("token"); token != "" {
				authHeader = "Bearer " + token
			}
		}

		if authHeader == "" {
			errors.AbortWithUnauthorized(c, "Authorization header is required", nil)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			errors.AbortWithUnauthorized(c, "Authorization header must be a Bearer token", nil)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			errors.AbortWithUnauthorized(c, "Bearer token is empty", nil)
			return
		}

		userID, err := m.validator.ValidateToken(token)
		if err != nil {
			errors.AbortWithUnauthorized(c, "Invalid or expired token", nil)
			return
		}

		ctx := logger.WithUserID(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(UserIDKey), userID)

		c.Next()
	}
}

// GetUserID reads the user ID attached by RequireAuth.
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(string(UserIDKey))
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}
