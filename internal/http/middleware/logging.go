// README: Request logging middleware: one structured line per request with a request id.
package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
)

func Logging(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(ctxRequestID, reqID)
		c.Header(headerRequestID, reqID)

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", reqID,
		}
		if uid := CallerUID(c); uid != "" {
			attrs = append(attrs, "actor_id", uid, "role", string(CallerRole(c)))
		}
		if len(c.Errors) > 0 {
			log.ErrorContext(c.Request.Context(), "request", append(attrs, "err", c.Errors.String())...)
			return
		}
		log.InfoContext(c.Request.Context(), "request", attrs...)
	}
}

func RequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}
