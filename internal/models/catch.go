package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Catch visibility levels.
const (
	VisibilityPublic    = "public"
	VisibilityFollowers = "followers"
	VisibilityPrivate   = "private"
)

// Catch is a logged catch. Only the fields the moderation core reads are
// modeled here; photos, venue data and measurements live elsewhere.
type Catch struct {
	ID         string `gorm:"primaryKey" json:"id"` // UUID
	UserID     string `gorm:"type:text;not null;index" json:"user_id"`
	Title      string `gorm:"size:200;not null" json:"title"`
	Species    string `gorm:"size:100" json:"species"`
	Visibility string `gorm:"size:20;default:'public';not null" json:"visibility"`

	// DeletedAt marks a soft delete. The row is never removed so comment
	// threads and reports keep a valid target to point at.
	DeletedAt *time.Time `gorm:"index" json:"deleted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate is a GORM hook that generates a UUID if the ID is not set.
func (c *Catch) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
