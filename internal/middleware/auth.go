package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mingle/mingle-backend/internal/common"
	"github.com/mingle/mingle-backend/pkg/jwt"
)

// JWTAuth verifies the bearer token and stores the caller's identity on
// the request context
func JWTAuth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			common.ErrorResponse(c, 401, "authorization header required", nil)
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			common.ErrorResponse(c, 401, "bearer token required", nil)
			c.Abort()
			return
		}

		claims, err := manager.Verify(token)
		if err != nil {
			common.ErrorResponse(c, 401, "invalid or expired token", err)
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("nickname", claims.Nickname)
		c.Next()
	}
}

// GetUserID reads the authenticated user id set by JWTAuth
func GetUserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
