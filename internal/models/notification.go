package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification kinds.
const (
	NotificationComment    = "comment"
	NotificationReply      = "reply"
	NotificationModeration = "moderation"
)

// Notification is a persisted notification for a user. Live delivery goes
// through the notify hub; this row is what the inbox reads.
type Notification struct {
	ID          string    `gorm:"primaryKey" json:"id"` // UUID
	UserID      string    `gorm:"type:text;not null;index" json:"user_id"`
	Type        string    `gorm:"size:20;not null" json:"type"`
	ActorID     string    `gorm:"type:text" json:"actor_id,omitempty"`
	SubjectType string    `gorm:"size:20" json:"subject_type,omitempty"`
	SubjectID   string    `gorm:"type:text" json:"subject_id,omitempty"`
	Body        string    `gorm:"size:500" json:"body"`
	IsRead      bool      `gorm:"default:false;not null" json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate is a GORM hook that generates a UUID if the ID is not set.
func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}

// NotificationEvent is the wire form pushed over Redis pub/sub and down
// each user's websocket stream.
type NotificationEvent struct {
	UserID      string `json:"user_id"`
	Type        string `json:"type"`
	ActorID     string `json:"actor_id,omitempty"`
	SubjectType string `json:"subject_type,omitempty"`
	SubjectID   string `json:"subject_id,omitempty"`
	Body        string `json:"body"`
}
