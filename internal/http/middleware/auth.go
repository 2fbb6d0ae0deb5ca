package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devta181281/flexfit/internal/modules/users"
	"github.com/devta181281/flexfit/internal/shared/apperr"
)

const (
	CtxKeyUserID = "user_id"
	CtxKeyRole   = "role"
)

func RequireAuth(tokens *users.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			Fail(c, apperr.UnauthorizedErr("Missing bearer token."))
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			Fail(c, apperr.UnauthorizedErr("Invalid or expired token."))
			return
		}

		c.Set(CtxKeyUserID, claims.Sub)
		c.Set(CtxKeyRole, claims.Role)
		c.Next()
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[Role(c)]; !ok {
			Fail(c, apperr.ForbiddenErr("Insufficient permissions."))
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	if v, ok := c.Get(CtxKeyUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func Role(c *gin.Context) string {
	if v, ok := c.Get(CtxKeyRole); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
