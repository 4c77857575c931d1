package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/craftdeal/craftdeal/internal/domain/model"
	"github.com/craftdeal/craftdeal/internal/server/http/middleware"
)

// CurrentProfileID extracts the authenticated profile id from context.
func CurrentProfileID(c *gin.Context) uuid.UUID {
	val, ok := c.Get(middleware.ProfileIDContextKey)
	if !ok {
		return uuid.Nil
	}
	id, _ := val.(uuid.UUID)
	return id
}

// CurrentRole extracts the verified token role from context.
func CurrentRole(c *gin.Context) model.Role {
	val, ok := c.Get(middleware.RoleContextKey)
	if !ok {
		return ""
	}
	role, _ := val.(model.Role)
	return role
}

// pathUUID parses a uuid path parameter, reporting ok=false on malformed input.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
