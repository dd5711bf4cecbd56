package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/nrb-complaints-api/pkg/errors"
	"github.com/noah-isme/nrb-complaints-api/pkg/response"
)

// RequireAuthenticated rejects anonymous callers with 401.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required, please log in"))
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects every caller without the admin role with 403,
// anonymous callers included.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentIdentity(c).IsAdmin() {
			response.Abort(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
