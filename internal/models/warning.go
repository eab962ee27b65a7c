package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserWarning is an append-only record of a moderation sanction. It is
// never updated or deleted; the target profile's warn count and moderation
// status are derived from it at issue time.
type UserWarning struct {
	ID       string `gorm:"primaryKey" json:"id"` // UUID
	UserID   string `gorm:"type:text;not null;index" json:"user_id"`
	IssuedBy string `gorm:"type:text;not null" json:"issued_by"`
	Reason   string `gorm:"size:500;not null" json:"reason"`
	Severity string `gorm:"size:30;not null" json:"severity"`

	// DurationHours is set only for temporary suspensions.
	DurationHours *int `json:"duration_hours,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate is a GORM hook that generates a UUID if the ID is not set.
func (w *UserWarning) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return
}
