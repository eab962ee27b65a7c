// Package moderation implements the warning and suspension escalator and
// the write gate every mutating path checks first.
package moderation

import (
	"fmt"
	"log"
	"time"

	"anglerlog/backend/internal/config"
	"anglerlog/backend/internal/models"
	"anglerlog/backend/internal/modlog"
	"anglerlog/backend/internal/notify"
	"anglerlog/backend/internal/storage"
)

// Service escalates warnings into suspensions and bans, and answers the
// "may this user write" question.
type Service struct {
	Storage  storage.Storage
	Notifier *notify.Notifier
	Alerter  *notify.AdminAlerter // optional
}

// NewService creates a new moderation service.
func NewService(s storage.Storage, n *notify.Notifier, alerter *notify.AdminAlerter) *Service {
	return &Service{Storage: s, Notifier: n, Alerter: alerter}
}

// IsAdmin is the single capability check for admin-only operations.
func (s *Service) IsAdmin(userID string) (bool, error) {
	profile, err := s.Storage.GetProfileByID(userID)
	if err != nil {
		return false, err
	}
	return profile != nil && profile.IsAdmin(), nil
}

// requireAdmin resolves the caller and fails with ErrNotAuthorized unless
// they carry the admin role.
func (s *Service) requireAdmin(adminID string) (*models.Profile, error) {
	admin, err := s.Storage.GetProfileByID(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil || !admin.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	return admin, nil
}

// WarnUser issues a warning against userID and applies its side effects
// atomically: the warning row, the warn-count increment, any status change
// and the audit log entry land together or not at all. Returns the new
// warning's id.
func (s *Service) WarnUser(adminID, userID, reason, severity string, durationHours *int) (string, error) {
	if _, err := s.requireAdmin(adminID); err != nil {
		return "", err
	}

	target, err := s.Storage.GetProfileByID(userID)
	if err != nil {
		return "", err
	}
	if target == nil {
		return "", ErrProfileNotFound
	}

	var update storage.ModerationUpdate
	logAction := config.ActionWarnUser

	switch severity {
	case config.SeverityWarning:
		// A warning alone does not gate writes, it only accumulates.
		durationHours = nil

	case config.SeverityTemporarySuspension:
		if durationHours == nil || *durationHours <= 0 {
			return "", ErrInvalidDuration
		}
		until := time.Now().Add(time.Duration(*durationHours) * time.Hour)
		update = storage.ModerationUpdate{
			SetStatus:       config.StatusSuspended,
			SuspensionUntil: &until,
		}
		logAction = config.ActionSuspendUser

	case config.SeverityPermanentBan:
		durationHours = nil
		update = storage.ModerationUpdate{SetStatus: config.StatusBanned}
		logAction = config.ActionSuspendUser

	default:
		return "", ErrInvalidSeverity
	}

	warning := &models.UserWarning{
		UserID:        userID,
		IssuedBy:      adminID,
		Reason:        reason,
		Severity:      severity,
		DurationHours: durationHours,
	}

	metadata := map[string]interface{}{
		"reason":   reason,
		"severity": severity,
	}
	if durationHours != nil {
		metadata["duration_hours"] = *durationHours
	}
	entry := &models.ModerationLogEntry{
		Action:     logAction,
		AdminID:    adminID,
		TargetType: config.TargetProfile,
		TargetID:   userID,
		UserID:     &userID,
		Metadata:   modlog.EncodeMetadata(metadata),
	}

	if err := s.Storage.ApplyWarning(warning, update, entry); err != nil {
		return "", err
	}

	s.cacheStatus(userID, severity, durationHours)
	s.notifyTarget(userID, adminID, reason, severity, update.SuspensionUntil)

	if severity == config.SeverityPermanentBan {
		s.Alerter.AlertPermanentBan(userID, reason)
	}

	return warning.ID, nil
}

// ClearStatus resets the user's moderation status to active. The warn
// count is history and stays.
func (s *Service) ClearStatus(adminID, userID, reason string) error {
	if _, err := s.requireAdmin(adminID); err != nil {
		return err
	}

	target, err := s.Storage.GetProfileByID(userID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrProfileNotFound
	}

	entry := &models.ModerationLogEntry{
		Action:     config.ActionClearModeration,
		AdminID:    adminID,
		TargetType: config.TargetProfile,
		TargetID:   userID,
		UserID:     &userID,
		Metadata:   modlog.EncodeMetadata(map[string]interface{}{"reason": reason}),
	}
	if err := s.Storage.ClearModeration(userID, entry); err != nil {
		return err
	}

	if err := s.Storage.ClearSuspensionFlag(userID); err != nil {
		log.Printf("WARNING: Failed to clear suspension flag for %s: %v", userID, err)
	}

	s.Notifier.Notify(userID, models.NotificationModeration, adminID,
		config.TargetProfile, userID, "Your account restrictions have been lifted.")
	return nil
}

// AssertAllowed fails with ErrBanned, ErrAccountDeleted or a
// *SuspendedError when userID may not write. An expired suspension_until
// counts as active; nothing auto-clears the stored status, the gate just
// stops honouring it.
func (s *Service) AssertAllowed(userID string) error {
	// Fast path: a cached ban decision skips the profile read. Cache
	// errors fall through to the database, this check is best effort.
	flag, err := s.Storage.GetSuspensionFlag(userID)
	if err != nil {
		log.Printf("WARNING: Suspension flag lookup failed for %s: %v", userID, err)
	} else if flag == config.StatusBanned {
		return ErrBanned
	}

	profile, err := s.Storage.GetProfileByID(userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrProfileNotFound
	}
	if profile.IsDeleted {
		return ErrAccountDeleted
	}

	switch profile.ModerationStatus {
	case config.StatusBanned:
		return ErrBanned
	case config.StatusSuspended:
		if profile.SuspensionUntil != nil && profile.SuspensionUntil.After(time.Now()) {
			return &SuspendedError{Until: *profile.SuspensionUntil}
		}
		// Suspension expired. Treated as active on every gate check.
		return nil
	}
	return nil
}

func (s *Service) cacheStatus(userID, severity string, durationHours *int) {
	var err error
	switch severity {
	case config.SeverityTemporarySuspension:
		ttl := time.Duration(*durationHours) * time.Hour
		err = s.Storage.SetSuspensionFlag(userID, config.StatusSuspended, ttl)
	case config.SeverityPermanentBan:
		err = s.Storage.SetSuspensionFlag(userID, config.StatusBanned, 0)
	default:
		return
	}
	if err != nil {
		log.Printf("WARNING: Failed to cache moderation status for %s: %v", userID, err)
	}
}

func (s *Service) notifyTarget(userID, adminID, reason, severity string, until *time.Time) {
	var body string
	switch severity {
	case config.SeverityWarning:
		body = fmt.Sprintf("You have received a warning: %s", reason)
	case config.SeverityTemporarySuspension:
		body = fmt.Sprintf("Your account is suspended until %s: %s", until.Format(time.RFC1123), reason)
	case config.SeverityPermanentBan:
		body = fmt.Sprintf("Your account has been permanently banned: %s", reason)
	}
	s.Notifier.Notify(userID, models.NotificationModeration, adminID,
		config.TargetProfile, userID, body)
}
