package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/eduforge/platform/pkg/helpers"
	"github.com/eduforge/platform/pkg/response"
)

// Auth validates the bearer token (Authorization header or access_token
// cookie) and, when Redis is configured, requires an active session record.
// It sets accountID, accountRole, and accountEmail in the Gin context.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil || claims.Scope != helpers.ScopeAuth {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}

		if rdb != nil {
			key := "account:session:" + claims.AccountID
			data, err := rdb.HGetAll(c.Request.Context(), key).Result()
			if err != nil || len(data) == 0 {
				response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
				c.Abort()
				return
			}
			c.Set("accountEmail", data["email"])
		}

		c.Set("accountID", claims.AccountID)
		c.Set("accountRole", claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group on the role claim set by Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("accountRole") != role {
			response.Error[any](c, http.StatusForbidden, "insufficient role", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if tok, err := c.Cookie("access_token"); err == nil {
		return tok
	}
	return ""
}
