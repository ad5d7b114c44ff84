package handler

import (
	"errors"
	"net/http"

	"chatline/backend/internal/auth"
	"chatline/backend/internal/models"
	"chatline/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.Storage.GetUserByEmail(req.Email); !errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		return
	}
	if _, err := h.Storage.GetUserByUsername(req.Username); !errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username already taken"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	user := &models.User{
		Email:          req.Email,
		Username:       req.Username,
		FullName:       req.FullName,
		HashedPassword: hashed,
		IsActive:       true,
	}
	if err := h.Storage.CreateUser(user); err != nil {
		log.Error().Err(err).Str("module", "api.auth").Msg("failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login verifies credentials and issues a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Storage.GetUserByUsername(req.Username)
	if err != nil || !user.IsActive || !auth.CheckPassword(user.HashedPassword, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	token, err := h.Auth.IssueToken(user.Username)
	if err != nil {
		log.Error().Err(err).Str("module", "api.auth").Msg("failed to sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "username": user.Username})
}
