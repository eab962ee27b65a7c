// Package ratelimit enforces per-user, per-action attempt caps over a
// trailing window. The check-then-insert runs as one SQL statement in the
// storage layer, so concurrent requests from the same user cannot
// over-admit past the cap.
package ratelimit

import (
	"errors"
	"log"
	"time"

	"anglerlog/backend/internal/config"
	"anglerlog/backend/internal/storage"
)

// ErrUnknownAction is returned for actions without a configured rule.
var ErrUnknownAction = errors.New("unknown rate limited action")

// Status is a read-only view of one user's window for an action.
type Status struct {
	Action            string     `json:"action"`
	AttemptsUsed      int64      `json:"attempts_used"`
	AttemptsRemaining int64      `json:"attempts_remaining"`
	IsLimited         bool       `json:"is_limited"`
	ResetAt           *time.Time `json:"reset_at"`
}

// Service gates rate limited actions.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new rate limiter.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// CheckAndRecord admits the attempt and records it, or denies without
// recording anything. This is a security gate: storage errors deny.
func (s *Service) CheckAndRecord(userID, action string) (bool, error) {
	rule, ok := config.RateLimitRules[action]
	if !ok {
		return false, ErrUnknownAction
	}

	allowed, err := s.Storage.TryRecordAttempt(userID, action, rule.Max, rule.Window)
	if err != nil {
		// Fail closed. Admitting writes while the store is down would
		// amplify abuse.
		return false, err
	}
	return allowed, nil
}

// Status computes the current window without mutating state. ResetAt is
// the moment the oldest in-window attempt ages out.
func (s *Service) Status(userID, action string) (*Status, error) {
	rule, ok := config.RateLimitRules[action]
	if !ok {
		return nil, ErrUnknownAction
	}

	used, oldest, err := s.Storage.CountAttempts(userID, action, rule.Window)
	if err != nil {
		return nil, err
	}

	status := &Status{
		Action:            action,
		AttemptsUsed:      used,
		AttemptsRemaining: int64(rule.Max) - used,
		IsLimited:         used >= int64(rule.Max),
	}
	if status.AttemptsRemaining < 0 {
		status.AttemptsRemaining = 0
	}
	if oldest != nil {
		reset := oldest.Add(rule.Window)
		status.ResetAt = &reset
	}
	return status, nil
}

// Usage lists a user's recorded attempts per action (self-service or
// admin view).
func (s *Service) Usage(userID string) ([]storage.ActionUsage, error) {
	return s.Storage.AttemptUsage(userID)
}

// Cleanup purges attempt rows older than the largest configured window and
// returns the number deleted.
func (s *Service) Cleanup() (int64, error) {
	deleted, err := s.Storage.CleanupAttempts(config.MaxRateLimitWindow())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Printf("INFO: Rate limit cleanup removed %d stale attempt rows", deleted)
	}
	return deleted, nil
}
