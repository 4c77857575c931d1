package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
	pkgAuth "github.com/craftdeal/craftdeal/internal/pkg/auth"
)

const (
	// ProfileIDContextKey is a gin context key for the authenticated profile id.
	ProfileIDContextKey = "profileID"
	// RoleContextKey is a gin context key for the verified token role claim.
	RoleContextKey = "role"
	authCookieName = "craftdeal_token"
)

// TokenParser verifies a token and returns the profile id and role it carries.
type TokenParser interface {
	ParseToken(token string) (uuid.UUID, model.Role, error)
}

// AuthRequired ensures the caller presents a valid token before reaching the
// handler. The role stored in context comes from the verified claim, never
// from request headers.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		profileID, role, err := parser.ParseToken(token)
		if err != nil {
			if err == pkgAuth.ErrInvalidToken {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(ProfileIDContextKey, profileID)
		c.Set(RoleContextKey, role)
		c.Next()
	}
}

// AdminRequired rejects callers whose token role is not admin. Must run after
// AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := c.Get(RoleContextKey)
		if !ok {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		role, _ := val.(model.Role)
		if role != model.RoleAdmin {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
