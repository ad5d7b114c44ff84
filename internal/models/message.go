package models

import (
	"time"

	"gorm.io/gorm"
)

// Message kinds as stored in the messages table.
const (
	MessageKindText      = "text"
	MessageKindImage     = "image"
	MessageKindVideo     = "video"
	MessageKindAudio     = "audio"
	MessageKindFile      = "file"
	MessageKindVoiceNote = "voice_note"
)

// Message represents a persisted chat message.
// The embedded gorm.Model provides ID, CreatedAt, UpdatedAt, and DeletedAt fields;
// ID serves as the message identifier history pagination keys on.
type Message struct {
	gorm.Model

	// ChatID is the identifier of the chat the message belongs to.
	ChatID string `gorm:"type:uuid;not null;index:idx_chat_msg" json:"chat_id"`
	// SenderUsername is the identity of the user who sent the message.
	SenderUsername string `gorm:"type:text;not null;index:idx_chat_msg" json:"sender_username"`
	Content        string `gorm:"type:text;not null" json:"content"`
	// Kind is one of the MessageKind* constants.
	Kind     string `gorm:"type:text;not null;default:text" json:"kind"`
	MediaURL string `gorm:"type:text" json:"media_url,omitempty"`

	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}
