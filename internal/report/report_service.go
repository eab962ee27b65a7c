// Package report implements the abuse report lifecycle: rate-limited
// creation, admin listing with resolved target context, unrestricted status
// transitions and the aggregated moderation context reviewers act on.
package report

import (
	"errors"
	"fmt"
	"time"

	"anglerlog/backend/internal/config"
	"anglerlog/backend/internal/models"
	"anglerlog/backend/internal/moderation"
	"anglerlog/backend/internal/modlog"
	"anglerlog/backend/internal/notify"
	"anglerlog/backend/internal/ratelimit"
	"anglerlog/backend/internal/storage"
)

var (
	// ErrInvalidTarget is returned for an unknown report target type.
	ErrInvalidTarget = errors.New("invalid report target type")

	// ErrEmptyReason is returned when the reason is blank.
	ErrEmptyReason = errors.New("report reason is required")

	// ErrInvalidStatus is returned for a status outside open/resolved/dismissed.
	ErrInvalidStatus = errors.New("invalid report status")

	// ErrReportNotFound is returned when the referenced report does not exist.
	ErrReportNotFound = errors.New("report not found")
)

// RateLimitedError is returned when the reporter exhausted their window.
// ResetAt is when the window next admits an attempt.
type RateLimitedError struct {
	ResetAt *time.Time
}

func (e *RateLimitedError) Error() string {
	if e.ResetAt == nil {
		return "report rate limit exceeded"
	}
	return fmt.Sprintf("report rate limit exceeded, try again after %s", e.ResetAt.Format(time.RFC3339))
}

const summaryLen = 80

// Service handles the report lifecycle.
type Service struct {
	Storage    storage.Storage
	Limiter    *ratelimit.Service
	Moderation *moderation.Service
	Modlog     *modlog.Service
	Notifier   *notify.Notifier
	Alerter    *notify.AdminAlerter // optional
}

// NewService creates a new report service.
func NewService(s storage.Storage, limiter *ratelimit.Service, mod *moderation.Service, ml *modlog.Service, n *notify.Notifier, alerter *notify.AdminAlerter) *Service {
	return &Service{Storage: s, Limiter: limiter, Moderation: mod, Modlog: ml, Notifier: n, Alerter: alerter}
}

// Create files a report. Any authenticated user may report any target; the
// target is not required to exist (it may already be gone, reviewers see
// that through the context's target_missing flag).
func (s *Service) Create(reporterID, targetType, targetID, reason, details string) (*models.Report, error) {
	if err := s.Moderation.AssertAllowed(reporterID); err != nil {
		return nil, err
	}

	switch targetType {
	case config.TargetCatch, config.TargetComment, config.TargetProfile:
	default:
		return nil, ErrInvalidTarget
	}
	if reason == "" {
		return nil, ErrEmptyReason
	}

	reporter, err := s.Storage.GetProfileByID(reporterID)
	if err != nil {
		return nil, err
	}
	if reporter == nil {
		return nil, moderation.ErrProfileNotFound
	}
	if !reporter.IsAdmin() {
		allowed, err := s.Limiter.CheckAndRecord(reporterID, config.RateActionReport)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, s.rateLimitedError(reporterID)
		}
	}

	report := &models.Report{
		TargetType: targetType,
		TargetID:   targetID,
		ReporterID: reporterID,
		Reason:     reason,
		Details:    details,
		Status:     config.ReportOpen,
	}
	if err := s.Storage.SaveReport(report); err != nil {
		return nil, err
	}

	s.Alerter.AlertNewReport(report)
	return report, nil
}

// View is a report decorated with resolved target context for display.
type View struct {
	models.Report
	ReportedUserID   string `json:"reported_user_id,omitempty"`
	ReportedUsername string `json:"reported_username,omitempty"`
	ContentSummary   string `json:"content_summary,omitempty"`
	TargetMissing    bool   `json:"target_missing"`
}

// List returns reports for admin review, each resolved to the reported
// user and a content summary.
func (s *Service) List(adminID string, f storage.ReportFilters, limit, offset int) ([]View, error) {
	isAdmin, err := s.Moderation.IsAdmin(adminID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, moderation.ErrNotAuthorized
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	reports, err := s.Storage.ListReports(f, limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(reports))
	for _, r := range reports {
		target, err := s.resolveTarget(r.TargetType, r.TargetID)
		if err != nil {
			return nil, err
		}
		views = append(views, View{
			Report:           r,
			ReportedUserID:   target.OwnerID,
			ReportedUsername: target.OwnerUsername,
			ContentSummary:   target.Summary,
			TargetMissing:    target.Missing,
		})
	}
	return views, nil
}

// UpdateStatus sets a report's status. Any status may move to any other,
// including back to open; there is no separate reopen operation.
func (s *Service) UpdateStatus(reportID, adminID, status, notes string) error {
	isAdmin, err := s.Moderation.IsAdmin(adminID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return moderation.ErrNotAuthorized
	}

	switch status {
	case config.ReportOpen, config.ReportResolved, config.ReportDismissed:
	default:
		return ErrInvalidStatus
	}

	report, err := s.Storage.GetReportByID(reportID)
	if err != nil {
		return err
	}
	if report == nil {
		return ErrReportNotFound
	}

	return s.Storage.UpdateReportStatus(reportID, adminID, status, notes)
}

// Context aggregates what a reviewer needs to act on a report: the target's
// owner, their moderation state and history, and whether the content still
// exists at all.
type Context struct {
	Report           models.Report               `json:"report"`
	TargetUserID     string                      `json:"target_user_id,omitempty"`
	TargetUsername   string                      `json:"target_username,omitempty"`
	ParentCatchID    *string                     `json:"parent_catch_id,omitempty"`
	DeletedAt        *time.Time                  `json:"deleted_at,omitempty"`
	TargetMissing    bool                        `json:"target_missing"`
	WarnCount        int                         `json:"warn_count"`
	ModerationStatus string                      `json:"moderation_status,omitempty"`
	SuspensionUntil  *time.Time                  `json:"suspension_until,omitempty"`
	PriorWarnings    []models.UserWarning        `json:"prior_warnings"`
	ModerationLog    []models.ModerationLogEntry `json:"moderation_log"`
	TargetHistory    []models.ModerationLogEntry `json:"target_history"`
}

// ModerationContext resolves a report into its review context. Content
// hard-removed through another path surfaces as target_missing, never as a
// failure.
func (s *Service) ModerationContext(reportID, adminID string) (*Context, error) {
	isAdmin, err := s.Moderation.IsAdmin(adminID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, moderation.ErrNotAuthorized
	}

	report, err := s.Storage.GetReportByID(reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}

	target, err := s.resolveTarget(report.TargetType, report.TargetID)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Report:         *report,
		TargetUserID:   target.OwnerID,
		TargetUsername: target.OwnerUsername,
		ParentCatchID:  target.ParentCatchID,
		DeletedAt:      target.DeletedAt,
		TargetMissing:  target.Missing,
		PriorWarnings:  []models.UserWarning{},
		ModerationLog:  []models.ModerationLogEntry{},
		TargetHistory:  []models.ModerationLogEntry{},
	}

	// Actions taken on the reported content itself, regardless of whether
	// the row still exists.
	history, err := s.Modlog.ForTarget(report.TargetType, report.TargetID, 20)
	if err != nil {
		return nil, err
	}
	if history != nil {
		ctx.TargetHistory = history
	}

	if target.OwnerID != "" {
		owner, err := s.Storage.GetProfileByID(target.OwnerID)
		if err != nil {
			return nil, err
		}
		if owner != nil {
			ctx.WarnCount = owner.WarnCount
			ctx.ModerationStatus = owner.ModerationStatus
			ctx.SuspensionUntil = owner.SuspensionUntil

			warnings, err := s.Storage.GetWarningsForUser(owner.ID)
			if err != nil {
				return nil, err
			}
			ctx.PriorWarnings = warnings

			entries, err := s.Modlog.List(storage.LogFilters{UserID: owner.ID}, 20, 0)
			if err != nil {
				return nil, err
			}
			ctx.ModerationLog = entries
		}
	}

	return ctx, nil
}

type resolvedTarget struct {
	OwnerID       string
	OwnerUsername string
	Summary       string
	ParentCatchID *string
	DeletedAt     *time.Time
	Missing       bool
}

// resolveTarget looks the target row up directly; a missing row means the
// content was removed through another path, not an error.
func (s *Service) resolveTarget(targetType, targetID string) (*resolvedTarget, error) {
	out := &resolvedTarget{}

	switch targetType {
	case config.TargetProfile:
		profile, err := s.Storage.GetProfileByID(targetID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			out.Missing = true
			return out, nil
		}
		out.OwnerID = profile.ID
		out.OwnerUsername = profile.Username
		out.Summary = profile.Username

	case config.TargetCatch:
		catch, err := s.Storage.GetCatchByID(targetID)
		if err != nil {
			return nil, err
		}
		if catch == nil {
			out.Missing = true
			return out, nil
		}
		out.OwnerID = catch.UserID
		out.Summary = truncate(catch.Title)
		out.DeletedAt = catch.DeletedAt
		out.OwnerUsername = s.usernameOf(catch.UserID)

	case config.TargetComment:
		comment, err := s.Storage.GetCommentByID(targetID)
		if err != nil {
			return nil, err
		}
		if comment == nil {
			out.Missing = true
			return out, nil
		}
		out.OwnerID = comment.UserID
		out.Summary = truncate(comment.Body)
		out.ParentCatchID = &comment.CatchID
		out.DeletedAt = comment.DeletedAt
		out.OwnerUsername = s.usernameOf(comment.UserID)

	default:
		return nil, ErrInvalidTarget
	}

	return out, nil
}

func (s *Service) rateLimitedError(reporterID string) error {
	rlErr := &RateLimitedError{}
	if status, err := s.Limiter.Status(reporterID, config.RateActionReport); err == nil {
		rlErr.ResetAt = status.ResetAt
	}
	return rlErr
}

func (s *Service) usernameOf(userID string) string {
	profile, err := s.Storage.GetProfileByID(userID)
	if err != nil || profile == nil {
		return ""
	}
	return profile.Username
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= summaryLen {
		return text
	}
	return string(runes[:summaryLen]) + "…"
}
