package config

import "time"

// Moderation statuses stored on a profile.
const (
	StatusActive     = "active"
	StatusSuspended  = "suspended"
	StatusBanned     = "banned"
	StatusRestricted = "restricted"
)

// Warning severities.
const (
	SeverityWarning             = "warning"
	SeverityTemporarySuspension = "temporary_suspension"
	SeverityPermanentBan        = "permanent_ban"
)

// Report statuses. Transitions are unrestricted (any status to any status,
// admin only), so these are labels rather than a state machine.
const (
	ReportOpen      = "open"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// Report / moderation target types.
const (
	TargetCatch   = "catch"
	TargetComment = "comment"
	TargetProfile = "profile"
)

// Moderation log actions.
const (
	ActionDeleteCatch     = "delete_catch"
	ActionDeleteComment   = "delete_comment"
	ActionRestoreCatch    = "restore_catch"
	ActionRestoreComment  = "restore_comment"
	ActionWarnUser        = "warn_user"
	ActionSuspendUser     = "suspend_user"
	ActionClearModeration = "clear_moderation"
)

// Rate-limited actions.
const (
	RateActionComment  = "comment"
	RateActionReport   = "report"
	RateActionReaction = "reaction"
	RateActionRating   = "rating"
	RateActionFollow   = "follow"
)

// RateLimitRule caps an action at Max attempts within a trailing Window.
type RateLimitRule struct {
	Max    int
	Window time.Duration
}

// RateLimitRules holds the per-action limits enforced by the domain limiter.
var RateLimitRules = map[string]RateLimitRule{
	RateActionComment:  {Max: 10, Window: 10 * time.Minute},
	RateActionReport:   {Max: 5, Window: time.Hour},
	RateActionReaction: {Max: 60, Window: 10 * time.Minute},
	RateActionRating:   {Max: 20, Window: time.Hour},
	RateActionFollow:   {Max: 30, Window: time.Hour},
}

// MaxRateLimitWindow returns the largest configured window. Attempt rows
// older than this are safe to purge.
func MaxRateLimitWindow() time.Duration {
	max := time.Duration(0)
	for _, rule := range RateLimitRules {
		if rule.Window > max {
			max = rule.Window
		}
	}
	return max
}

const (
	// SuspensionKeyPrefix is the Redis key prefix for the moderation
	// fast path (key holds the status, TTL mirrors the suspension end).
	SuspensionKeyPrefix = "suspend:"

	// DeletedBodyPlaceholder replaces the body of a soft-deleted comment
	// for viewers other than the author and admins.
	DeletedBodyPlaceholder = "[deleted]"

	// RedactedPlaceholder replaces sensitive metadata values in
	// moderation log output.
	RedactedPlaceholder = "[redacted]"
)

// RedactedMetadataKeys is the denylist matched (substring, case-insensitive)
// against moderation log metadata keys before any read returns them.
var RedactedMetadataKeys = []string{
	"password", "token", "secret", "email", "ip",
	"session", "jwt", "key", "cookie", "auth",
}

// Edge HTTP limiter (best effort, separate from the domain limiter).
const (
	EdgeLimiterRPS   = 10
	EdgeLimiterBurst = 20
)
