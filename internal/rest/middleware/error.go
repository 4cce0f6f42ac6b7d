package middleware

import (
	"github.com/gin-gonic/gin"
	ierr "github.com/remindly/remindly/internal/errors"
	"github.com/remindly/remindly/internal/logger"
)

// ErrorHandlerMiddleware converts errors attached to the gin context into the
// standard error envelope. Handlers call c.Error(err) and return; this
// middleware owns the wire shape.
func ErrorHandlerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)
		if status >= 500 {
			log.Errorw("request failed", "error", err)
		}
		c.JSON(status, ierr.NewErrorResponse(err))
	}
}
