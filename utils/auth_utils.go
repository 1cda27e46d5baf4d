package utils

import (
	"github.com/ecoreport/api-go/auth"
	"github.com/gin-gonic/gin"
)

type contextKey string

const IdentityContextKey contextKey = "identity"

// SetIdentity stores the verified caller identity on the request context.
func SetIdentity(c *gin.Context, id auth.Identity) {
	c.Set(string(IdentityContextKey), id)
}

// GetIdentity returns the identity stored by the auth middleware.
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, exists := c.Get(string(IdentityContextKey))
	if !exists {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
