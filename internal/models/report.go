package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report is an abuse report filed against a catch, comment or profile.
type Report struct {
	ID              string     `gorm:"primaryKey" json:"id"` // UUID
	TargetType      string     `gorm:"size:20;not null;index" json:"target_type"`
	TargetID        string     `gorm:"type:text;not null;index" json:"target_id"`
	ReporterID      string     `gorm:"type:text;not null;index" json:"reporter_id"`
	Reason          string     `gorm:"size:500;not null" json:"reason"`
	Details         string     `gorm:"type:text" json:"details,omitempty"`
	Status          string     `gorm:"size:20;default:'open';not null;index" json:"status"`
	ResolutionNotes string     `gorm:"type:text" json:"resolution_notes,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	ReviewedBy      *string    `json:"reviewed_by"`
	CreatedAt       time.Time  `json:"created_at"`
}

// BeforeCreate is a GORM hook that generates a UUID if the ID is not set.
func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
