package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
)

// ErrorHandler turns errors attached with c.Error into the JSON error shape
// used by every handler. Binding errors become INVALID_INPUT; anything that is
// not an AppError is logged and reported as INTERNAL_ERROR. Responses already
// written by the handler are left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		appErr := toAppError(last)
		if appErr.Internal != nil {
			logger.Get().Errorw("request failed",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"user_id", c.GetString(UserIDKey),
			)
		}

		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}

func toAppError(ginErr *gin.Error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(ginErr.Err, &appErr) {
		return appErr
	}
	if ginErr.IsType(gin.ErrorTypeBind) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, ginErr.Err.Error())
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, ginErr.Err)
}
