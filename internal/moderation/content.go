package moderation

import (
	"errors"
	"time"

	"anglerlog/backend/internal/config"
	"anglerlog/backend/internal/models"
	"anglerlog/backend/internal/modlog"
)

// ErrCatchNotFound is returned when the referenced catch does not exist.
var ErrCatchNotFound = errors.New("catch not found")

// AdminDeleteCatch soft-deletes a catch as a moderation action. The row
// stays so comment threads and reports keep their target; idempotent.
func (s *Service) AdminDeleteCatch(catchID, adminID, reason string) error {
	if _, err := s.requireAdmin(adminID); err != nil {
		return err
	}

	catch, err := s.Storage.GetCatchByID(catchID)
	if err != nil {
		return err
	}
	if catch == nil {
		return ErrCatchNotFound
	}

	if catch.DeletedAt == nil {
		now := time.Now()
		if err := s.Storage.SetCatchDeleted(catchID, &now); err != nil {
			return err
		}
	}

	entry := &models.ModerationLogEntry{
		Action:     config.ActionDeleteCatch,
		AdminID:    adminID,
		TargetType: config.TargetCatch,
		TargetID:   catchID,
		UserID:     &catch.UserID,
		Metadata:   modlog.EncodeMetadata(map[string]interface{}{"reason": reason}),
	}
	if err := s.Storage.AppendModerationLog(entry); err != nil {
		return err
	}

	s.Notifier.Notify(catch.UserID, models.NotificationModeration, adminID,
		config.TargetCatch, catchID, "Your catch was removed by a moderator: "+reason)
	return nil
}

// AdminRestoreCatch clears a catch's soft delete. Idempotent.
func (s *Service) AdminRestoreCatch(catchID, adminID, reason string) error {
	if _, err := s.requireAdmin(adminID); err != nil {
		return err
	}

	catch, err := s.Storage.GetCatchByID(catchID)
	if err != nil {
		return err
	}
	if catch == nil {
		return ErrCatchNotFound
	}
	if catch.DeletedAt == nil {
		return nil
	}

	if err := s.Storage.SetCatchDeleted(catchID, nil); err != nil {
		return err
	}

	entry := &models.ModerationLogEntry{
		Action:     config.ActionRestoreCatch,
		AdminID:    adminID,
		TargetType: config.TargetCatch,
		TargetID:   catchID,
		UserID:     &catch.UserID,
		Metadata:   modlog.EncodeMetadata(map[string]interface{}{"reason": reason}),
	}
	return s.Storage.AppendModerationLog(entry)
}
