package models

import "time"

// Call kinds.
const (
	CallKindVoice = "voice"
	CallKindVideo = "video"
)

// Call statuses. Ended, missed and rejected are terminal.
const (
	CallStatusRinging  = "ringing"
	CallStatusOngoing  = "ongoing"
	CallStatusEnded    = "ended"
	CallStatusMissed   = "missed"
	CallStatusRejected = "rejected"
)

// Call is the persisted record of a voice or video call. Live call state
// is tracked in memory by the call coordinator; a row is written only
// when the session reaches a terminal status.
type Call struct {
	CallID           string     `gorm:"primaryKey" json:"call_id"`
	ChatID           string     `gorm:"type:uuid;index" json:"chat_id"`
	CallerUsername   string     `gorm:"type:text;not null" json:"caller_username"`
	ReceiverUsername string     `gorm:"type:text;not null" json:"receiver_username"`
	Kind             string     `gorm:"type:text;not null" json:"kind"`
	Status           string     `gorm:"type:text;not null" json:"status"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	// DurationSeconds is computed when the session ends.
	DurationSeconds int `json:"duration_seconds"`
}
