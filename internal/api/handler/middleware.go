package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// identityKey is the gin context key the resolved identity is stored under.
const identityKey = "identity"

// AuthRequired resolves the bearer token on protected routes and aborts
// with 401 when it cannot be resolved to an active account.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := h.Auth.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// currentIdentity reads the identity AuthRequired stored on the context.
func currentIdentity(c *gin.Context) string {
	return c.GetString(identityKey)
}
