package middleware

import (
	stderrors "errors"
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/pkg/errors"
	"github.com/kcalbot/kcalbot-backend/pkg/logger"
)

// ErrorHandlerMiddleware turns panics and errors attached with c.Error into
// the standard error payload.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(debug.Stack())).
					Msg("Panic recovered")

				c.AbortWithStatusJSON(errors.ErrInternalServer.Status, errors.ErrInternalServer.Payload())
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			c.JSON(appErr.Status, appErr.Payload())
			return
		}

		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled request error")
		c.JSON(errors.ErrInternalServer.Status, errors.ErrInternalServer.Payload())
	}
}
