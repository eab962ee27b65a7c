package comments

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotAccessible covers every accessibility denial: missing catch,
	// soft-deleted catch, visibility rules and blocks. Deliberately one
	// generic error so callers cannot tell why (a block must not leak).
	ErrNotAccessible = errors.New("catch not accessible")

	// ErrInvalidParent is returned when the reply target does not exist or
	// belongs to a different catch.
	ErrInvalidParent = errors.New("unable to reply to that comment")

	// ErrEmptyBody is returned for a blank comment body.
	ErrEmptyBody = errors.New("comment body is empty")

	// ErrCommentNotFound is returned when the referenced comment does not exist.
	ErrCommentNotFound = errors.New("comment not found")
)

// RateLimitedError is returned when the comment rate limit is exhausted.
// ResetAt is when the window next admits an attempt.
type RateLimitedError struct {
	ResetAt *time.Time
}

func (e *RateLimitedError) Error() string {
	if e.ResetAt == nil {
		return "rate limit exceeded"
	}
	return fmt.Sprintf("rate limit exceeded, try again after %s", e.ResetAt.Format(time.RFC3339))
}
