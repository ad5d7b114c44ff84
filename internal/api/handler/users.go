package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Me returns the authenticated user's own profile with live presence.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.Storage.GetUserByUsername(currentIdentity(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	online, err := h.Storage.IsOnline(user.Username)
	if err == nil {
		user.IsOnline = online
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers returns a page of registered users.
func (h *Handler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	users, err := h.Storage.ListUsers(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
