package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"scholarauxil/internal/pkg/response"
)

// ErrorLogger logs failed requests and recovers from handler panics so a
// fault in one request can not take the process down.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				logRequestError(c, start, "panic", recovered, debug.Stack())
				response.AbortError(c, http.StatusInternalServerError, "INTERNAL", "Internal server error")
				return
			}

			if c.Writer.Status() >= http.StatusInternalServerError {
				logRequestError(c, start, "http_error", c.Writer.Status(), nil)
			}
			for _, err := range c.Errors {
				logRequestError(c, start, "handler_error", err.Error(), nil)
			}
		}()

		c.Next()
	}
}

func logRequestError(c *gin.Context, start time.Time, errType string, detail any, stack []byte) {
	log.Printf(
		"request_error type=%s status=%d method=%s path=%s client_ip=%s user_id=%s latency=%s detail=%v stack=%s",
		errType,
		c.Writer.Status(),
		c.Request.Method,
		c.Request.URL.Path,
		c.ClientIP(),
		c.GetString("user_id"),
		time.Since(start),
		detail,
		string(stack),
	)
}
