package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModerationLogEntry is one row of the append-only moderation audit trail.
type ModerationLogEntry struct {
	ID         string  `gorm:"primaryKey" json:"id"` // UUID
	Action     string  `gorm:"size:40;not null;index" json:"action"`
	AdminID    string  `gorm:"type:text;not null;index" json:"admin_id"`
	TargetType string  `gorm:"size:20;not null" json:"target_type"`
	TargetID   string  `gorm:"type:text;not null;index" json:"target_id"`
	UserID     *string `gorm:"index" json:"user_id,omitempty"` // affected user, if any

	// Metadata is a JSON object (reason, duration, etc). Stored as text,
	// redacted before it leaves the modlog package.
	Metadata string `gorm:"type:text" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate is a GORM hook that generates a UUID if the ID is not set.
func (e *ModerationLogEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}
