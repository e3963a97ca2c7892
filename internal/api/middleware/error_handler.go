package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"video-subtitler/internal/api/errors"
)

// ErrorHandler recovers from panics and renders them as structured errors.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString("request_id")

		var apiErr *errors.APIError
		switch err := recovered.(type) {
		case *errors.APIError:
			apiErr = err
		case error:
			logger.Error("unhandled error",
				"error", err.Error(),
				"request_id", requestID,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
			apiErr = errors.NewInternalError("internal server error")
		default:
			logger.Error("panic in handler",
				"recovered", recovered,
				"request_id", requestID,
			)
			apiErr = errors.NewInternalError("internal server error")
		}
		apiErr.RequestID = requestID
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError renders a pipeline error as the matching HTTP response.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	apiErr := errors.FromError(err)
	apiErr.RequestID = c.GetString("request_id")
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}
