package handler

import (
	"errors"
	"net/http"
	"strconv"

	"chatline/backend/internal/config"
	"chatline/backend/internal/models"
	"chatline/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type createChatRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsGroup     bool     `json:"is_group"`
	Members     []string `json:"members" binding:"required,min=1"`
}

type updateChatRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateChat creates a direct or group chat. The creator is always part
// of the membership and becomes admin of group chats.
func (h *Handler) CreateChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	identity := currentIdentity(c)

	members := req.Members
	seen := map[string]bool{identity: true}
	unique := []string{identity}
	for _, m := range members {
		if !seen[m] {
			seen[m] = true
			unique = append(unique, m)
		}
	}

	for _, m := range unique {
		if m == identity {
			continue
		}
		if _, err := h.Storage.GetUserByUsername(m); errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown member: " + m})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify members"})
			return
		}
	}

	if !req.IsGroup && len(unique) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direct chats need exactly one other member"})
		return
	}

	chat := &models.Chat{
		Name:        req.Name,
		Description: req.Description,
		IsGroup:     req.IsGroup,
		Members:     pq.StringArray(unique),
	}
	if req.IsGroup {
		chat.AdminUsername = identity
	}
	if err := h.Storage.CreateChat(chat); err != nil {
		log.Error().Err(err).Str("module", "api.chat").Msg("failed to create chat")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create chat"})
		return
	}
	c.JSON(http.StatusCreated, chat)
}

// ListChats returns the chats the authenticated user belongs to.
func (h *Handler) ListChats(c *gin.Context) {
	chats, err := h.Storage.GetUserChats(currentIdentity(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list chats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// GetChat returns one chat the authenticated user is a member of.
func (h *Handler) GetChat(c *gin.Context) {
	chat, ok := h.memberChat(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, chat)
}

// UpdateChat changes a group chat's name or description. Admin only.
func (h *Handler) UpdateChat(c *gin.Context) {
	chat, ok := h.adminChat(c)
	if !ok {
		return
	}
	var req updateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name != "" {
		chat.Name = req.Name
	}
	if req.Description != "" {
		chat.Description = req.Description
	}
	if err := h.Storage.UpdateChat(chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update chat"})
		return
	}
	c.JSON(http.StatusOK, chat)
}

// DeleteChat removes a group chat. Admin only.
func (h *Handler) DeleteChat(c *gin.Context) {
	chat, ok := h.adminChat(c)
	if !ok {
		return
	}
	if err := h.Storage.DeleteChat(chat.ChatID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete chat"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMessages returns newest-first paginated history for a chat the
// authenticated user is a member of. Use before=<message id> to page back.
func (h *Handler) GetMessages(c *gin.Context) {
	chat, ok := h.memberChat(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(config.DefaultHistoryLimit)))
	before, _ := strconv.ParseUint(c.DefaultQuery("before", "0"), 10, 64)

	msgs, err := h.Storage.GetMessages(chat.ChatID, limit, uint(before))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// memberChat loads the chat from the :id param and enforces membership.
func (h *Handler) memberChat(c *gin.Context) (*models.Chat, bool) {
	chat, err := h.Storage.GetChatByID(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat"})
		return nil, false
	}
	if !chat.HasMember(currentIdentity(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied to this chat"})
		return nil, false
	}
	return chat, true
}

// adminChat additionally requires the caller to be the group admin.
func (h *Handler) adminChat(c *gin.Context) (*models.Chat, bool) {
	chat, ok := h.memberChat(c)
	if !ok {
		return nil, false
	}
	if !chat.IsGroup || chat.AdminUsername != currentIdentity(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the chat admin may do this"})
		return nil, false
	}
	return chat, true
}
