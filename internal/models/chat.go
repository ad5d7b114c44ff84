package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Chat represents a conversation between two or more users.
// Direct chats have exactly two members and no name; group chats carry
// a name, an optional description and an admin who may update or delete
// the chat.
type Chat struct {
	// ChatID is the unique identifier for the chat (UUID).
	ChatID string `gorm:"primaryKey" json:"chat_id"`
	// Name is empty for direct chats.
	Name        string `json:"name"`
	Description string `json:"description"`
	IsGroup     bool   `json:"is_group"`
	// AdminUsername is set only for group chats.
	AdminUsername string `json:"admin_username"`
	// Members holds the usernames of the persisted chat membership.
	// This is the authorization source of truth; live room subscriptions
	// in the hub are a separate, ephemeral concern.
	Members   pq.StringArray `gorm:"type:text[]" json:"members"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BeforeCreate is a GORM hook that assigns a UUID if none is set.
func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ChatID == "" {
		c.ChatID = uuid.New().String()
	}
	return
}

// HasMember reports whether username is part of the persisted membership.
func (c *Chat) HasMember(username string) bool {
	for _, m := range c.Members {
		if m == username {
			return true
		}
	}
	return false
}
