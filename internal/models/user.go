package models

import "time"

// User represents a registered account in the system.
// The Username doubles as the stable identity used by the realtime core:
// connection registry entries, room subscriptions and call sessions are
// all keyed by it.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName       string    `json:"full_name"`
	HashedPassword string    `json:"-"`
	AvatarURL      string    `json:"avatar_url"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	IsOnline       bool      `gorm:"default:false" json:"is_online"`
	LastSeen       time.Time `json:"last_seen"`
	CreatedAt      time.Time `json:"created_at"`
}
