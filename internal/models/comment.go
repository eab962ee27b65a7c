package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a threaded comment on a catch. ParentCommentID, when set, must
// reference a comment on the same catch. Comments are only ever soft
// deleted; replies stay attached to a deleted parent.
type Comment struct {
	ID              string     `gorm:"primaryKey" json:"id"` // UUID
	CatchID         string     `gorm:"type:text;not null;index" json:"catch_id"`
	UserID          string     `gorm:"type:text;not null;index" json:"user_id"`
	Body            string     `gorm:"type:text;not null" json:"body"`
	ParentCommentID *string    `gorm:"index" json:"parent_comment_id"` // nil for top-level comments
	DeletedAt       *time.Time `gorm:"index" json:"deleted_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BeforeCreate is a GORM hook that generates a UUID if the ID is not set.
func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// IsDeleted reports whether the comment is soft deleted.
func (c *Comment) IsDeleted() bool {
	return c.DeletedAt != nil
}
