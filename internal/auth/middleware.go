package auth

import (
	"strings"

	apperrors "codeberg.org/incdrops/server/internal/errors"
	"github.com/gin-gonic/gin"
)

// validates the bearer token and adds the account to the context
func (t *Tokens) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apperrors.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			apperrors.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := t.Validate(token)
		if err != nil {
			apperrors.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// like Middleware but also accepts ?token= for clients that cannot set
// headers, such as browser websockets
func (t *Tokens) QueryTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			token = c.Query("token")
		}

		if token == "" {
			apperrors.Unauthorized(c, "token required")
			c.Abort()
			return
		}

		claims, err := t.Validate(token)
		if err != nil {
			apperrors.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// extracts user_id from context after Middleware
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")

	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	return id, ok && id != ""
}

// the email claim of the authenticated token, "" when absent
func GetUserEmail(c *gin.Context) string {
	return c.GetString("user_email")
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("user_email", claims.Email)
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
