package apperrors

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/pyra/backend/internal/metrics"
)

// Middleware renders the last error attached with c.Error as a JSON response.
// Handlers attach the error and return without writing a body.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := As(c.Errors.Last().Err)
		metrics.HTTPErrorsTotal.WithLabelValues(string(appErr.Kind)).Inc()
		logError(c, appErr)

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(appErr.HTTPStatus(), appErr.Response())
	}
}

func logError(c *gin.Context, err *Error) {
	attrs := []any{
		"kind", err.Kind,
		"message", err.Message,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", err.HTTPStatus(),
	}
	for k, v := range err.Fields {
		attrs = append(attrs, k, v)
	}
	if userID, ok := c.Get("user_id"); ok {
		attrs = append(attrs, "user_id", userID)
	}

	ctx := c.Request.Context()
	switch err.Kind {
	case KindInvalidArgument, KindNotFound, KindUnauthorized, KindForbidden:
		slog.InfoContext(ctx, "request rejected", attrs...)
	case KindCanceled:
		slog.InfoContext(ctx, "request canceled", attrs...)
	case KindConflict, KindUnavailable:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.WarnContext(ctx, "request not completed", attrs...)
	default:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "request failed", attrs...)
	}
}
