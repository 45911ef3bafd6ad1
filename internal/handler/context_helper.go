package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/PrincipieCyupe/tyi/internal/middleware"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
	"github.com/PrincipieCyupe/tyi/pkg/response"
)

// memberID returns the authenticated member id or writes 401 and reports false.
func memberID(c *gin.Context) (string, bool) {
	claims, ok := middleware.Claims(c)
	if !ok || claims.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

// bindJSON decodes the request body and writes a validation error on failure.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Validation(err, message))
		return false
	}
	return true
}
