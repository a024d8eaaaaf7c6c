package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"yamdb/internal/apperr"
)

// WriteError aborts the request with the JSON form of err. Internal errors
// are logged with their cause and answered with a generic message.
func WriteError(c *gin.Context, log *slog.Logger, err error) {
	ae := apperr.As(err)
	if ae.Kind == apperr.KindInternal && log != nil {
		log.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	}
	c.AbortWithStatusJSON(ae.HTTPStatus(), ae)
}
