package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/clinic-api/internal/handler"
)

// ErrorHandler logs every error attached to the gin context after the
// handler chain has run. It writes a response only when nothing has been
// written yet, so handlers that already rendered their own error envelope
// keep a single body. The raw error text stays in the logs; clients get
// the generic status text.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", requestID).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("client_ip", c.ClientIP()).
				Msg("request failed")
		}

		if c.Writer.Written() {
			return
		}

		status := http.StatusInternalServerError
		if sc, ok := c.Errors.Last().Err.(interface{ StatusCode() int }); ok {
			status = sc.StatusCode()
		}
		c.JSON(status, handler.NewErrorResponse(http.StatusText(status)))
	}
}
