package models

import "time"

// RateLimitRecord is one attempt of a rate-limited action. One row per
// allowed attempt; denied attempts insert nothing. Rows older than the
// largest configured window are purged by the cleanup sweep.
type RateLimitRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:text;not null;index:idx_rate_user_action" json:"user_id"`
	Action    string    `gorm:"size:30;not null;index:idx_rate_user_action" json:"action"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
