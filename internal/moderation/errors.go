package moderation

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrBanned gates every write path of a permanently banned user.
	ErrBanned = errors.New("account permanently banned")

	// ErrAccountDeleted is terminal: a deleted account never writes again.
	ErrAccountDeleted = errors.New("account deleted")

	// ErrNotAuthorized is returned when a non-admin calls an admin-only
	// operation. Nothing is partially executed.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrProfileNotFound is returned when the referenced user does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidSeverity is returned for an unknown warning severity.
	ErrInvalidSeverity = errors.New("invalid warning severity")

	// ErrInvalidDuration is returned when duration_hours is missing or not
	// positive for a temporary suspension.
	ErrInvalidDuration = errors.New("temporary suspension requires a positive duration_hours")
)

// SuspendedError gates writes of a suspended user and carries the end of
// the suspension so callers can tell the user when they can post again.
type SuspendedError struct {
	Until time.Time
}

func (e *SuspendedError) Error() string {
	return fmt.Sprintf("account suspended until %s", e.Until.Format(time.RFC3339))
}
