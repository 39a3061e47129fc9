package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// AuthUserIDKey is the key used to store the authenticated user id in the context
	AuthUserIDKey = "auth_user_id"

	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// TokenVerifier validates a bearer token and returns the user id it carries.
type TokenVerifier interface {
	VerifyToken(tokenString string) (uuid.UUID, error)
}

// RequireAuth middleware rejects requests without a valid bearer token and
// stores the authenticated user id in the gin context
func RequireAuth(logger *slog.Logger, verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authorizationHeader)
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			unauthorized(c, "Missing or malformed authorization header")
			return
		}

		userID, err := verifier.VerifyToken(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			logger.Warn("Rejected bearer token", "path", c.Request.URL.Path, "error", err)
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(AuthUserIDKey, userID)
		c.Next()
	}
}

// GetAuthUserID retrieves the authenticated user id from the gin context
func GetAuthUserID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(AuthUserIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

func unauthorized(c *gin.Context, message string) {
	response := gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, response)
}
