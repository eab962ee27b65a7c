package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // Needed for pq.StringArray
	"gorm.io/gorm"
)

// Profile represents an angler's account as seen by the moderation core.
// Identity and credentials live with the external auth provider; this row
// only carries what gating and moderation decisions need.
type Profile struct {
	ID       string `gorm:"primaryKey" json:"id"` // UUID
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Role     string `gorm:"size:20;default:'user';not null" json:"role"` // user, admin

	// WarnCount only ever grows; clearing a suspension does not reset it.
	WarnCount        int        `gorm:"default:0;not null" json:"warn_count"`
	ModerationStatus string     `gorm:"size:20;default:'active';not null" json:"moderation_status"`
	SuspensionUntil  *time.Time `json:"suspension_until"`

	IsDeleted         bool `gorm:"default:false;not null" json:"is_deleted"`
	LockedForDeletion bool `gorm:"default:false;not null" json:"locked_for_deletion"`

	// BlockedUserIDs holds the IDs this user has blocked.
	BlockedUserIDs pq.StringArray `gorm:"type:text[]" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate is a GORM hook that generates a UUID if the ID is not set.
func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p.Role == "admin"
}

// HasBlocked reports whether this profile has blocked the given user.
func (p *Profile) HasBlocked(userID string) bool {
	for _, id := range p.BlockedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Follow links a follower to the profile they follow. Backs the
// "followers" catch visibility rule.
type Follow struct {
	FollowerID string    `gorm:"primaryKey" json:"follower_id"`
	FolloweeID string    `gorm:"primaryKey" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
