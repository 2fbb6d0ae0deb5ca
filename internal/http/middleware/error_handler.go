package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/devta181281/flexfit/internal/shared/apperr"
)

// Fail records the error for the ErrorHandler middleware and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders every hard error in a consistent envelope:
// {"success":false,"error":{"kind","message"},"request_id"}. Soft redemption
// failures never reach this path; they are 200 responses with valid=false.
func ErrorHandler(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := apperr.HTTPStatus(err)
		rid := GetRequestID(c)

		l.LogAttrs(c.Request.Context(), slog.LevelError, "request_failed",
			slog.String("request_id", rid),
			slog.Int("status", status),
			slog.Any("err", err),
		)

		body := gin.H{"kind": "internal", "message": apperr.PublicMessage(err)}
		if ae, ok := apperr.As(err); ok {
			body["kind"] = string(ae.Kind)
			if len(ae.Fields) > 0 {
				body["fields"] = ae.Fields
			}
		}

		c.AbortWithStatusJSON(status, gin.H{
			"success":    false,
			"error":      body,
			"request_id": rid,
		})
	}
}
