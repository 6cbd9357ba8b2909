package user

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/slingventas/sales-tracker-backend/internal/platform/apperr"
	"github.com/slingventas/sales-tracker-backend/pkg/token"
)

const currentUserKey = "currentUser"

// AuthMiddleware requires a valid session token for an account that still
// exists. The token is read from the Authorization header, or from the
// access_token query parameter for EventSource clients.
func AuthMiddleware(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			apperr.Respond(c, s.log, moduleName, "AuthMiddleware", apperr.ErrUnauthorized)
			return
		}

		claims, err := token.ParseToken(raw)
		if err != nil {
			apperr.Respond(c, s.log, moduleName, "AuthMiddleware", apperr.ErrUnauthorized)
			return
		}

		// Role comes from the directory, not the token.
		u, err := s.Lookup(c.Request.Context(), claims.Username())
		if err != nil {
			apperr.Respond(c, s.log, moduleName, "AuthMiddleware", err)
			return
		}

		c.Set(currentUserKey, u)
		c.Next()
	}
}

// RequireOwner must run after AuthMiddleware.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Current(c).IsOwner() {
			c.AbortWithStatusJSON(apperr.Status(apperr.ErrForbidden), gin.H{"error": "owner role required"})
			return
		}
		c.Next()
	}
}

// Current returns the authenticated user, or nil outside AuthMiddleware.
func Current(c *gin.Context) *User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*User)
	return u
}

// WithUser stores u on the context as AuthMiddleware would.
func WithUser(c *gin.Context, u *User) {
	c.Set(currentUserKey, u)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return c.Query("access_token")
}
