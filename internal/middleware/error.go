package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "stockagent/internal/errors"
	"stockagent/internal/logger"
)

// ErrorHandler turns errors attached to the gin context into the JSON
// error envelope. AppErrors keep their code, status, and message;
// anything else is logged in full and answered with a generic 500 so
// internals never reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				logger.Get().Errorw("app error",
					"code", appErr.Code,
					"message", appErr.Message,
					"internal", appErr.Internal.Error(),
					"path", c.Request.URL.Path,
				)
			}
			writeError(c, appErr)
			return
		}

		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		writeError(c, apperrors.ErrInternalServer)
	}
}

func writeError(c *gin.Context, appErr *apperrors.AppError) {
	c.JSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
