package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Montinou/stratixV2-sub007/internal/delivery/http/response"
	"github.com/Montinou/stratixV2-sub007/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorHandler translates errors attached to the gin context into the JSON
// envelope. AppError carries its own status code; anything else is logged and
// reported as a generic 500 so internal details never reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				if appErr.Code >= http.StatusInternalServerError {
					slog.Error("request failed", "error", appErr.Err, "path", c.FullPath())
				}
				response.Error(c, appErr.Code, appErr.Message, nil)
				return
			}
			slog.Error("unhandled request error", "error", err, "path", c.FullPath())
			response.Error(c, http.StatusInternalServerError, "Ocurrió un error inesperado. Intentá de nuevo más tarde.", nil)
		}
	}
}
