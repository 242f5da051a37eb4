package v1

import (
	"context"

	"github.com/Montinou/stratixV2-sub007/internal/domain"

	"github.com/gin-gonic/gin"
)

// principalContext copies the authenticated principal from the gin context
// into the request context under the typed keys the usecases read
func principalContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if userID := c.GetString(string(domain.KeyUserID)); userID != "" {
		ctx = context.WithValue(ctx, domain.KeyUserID, userID)
	}
	if email := c.GetString(string(domain.KeyUserEmail)); email != "" {
		ctx = context.WithValue(ctx, domain.KeyUserEmail, email)
	}
	if role := c.GetString(string(domain.KeyUserRole)); role != "" {
		ctx = context.WithValue(ctx, domain.KeyUserRole, role)
	}
	return ctx
}
