package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"anglerlog/backend/internal/config"
	"anglerlog/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NotifyChannel is the Redis pub/sub channel notification events fan out on.
const NotifyChannel = "notify:events"

// ActionUsage is a per-action summary of a user's recorded attempts.
type ActionUsage struct {
	Action        string     `json:"action"`
	Count         int64      `json:"count"`
	OldestAttempt *time.Time `json:"oldest_attempt"`
	NewestAttempt *time.Time `json:"newest_attempt"`
}

// ReportFilters narrows an admin report listing. Zero values mean "any".
type ReportFilters struct {
	Status         string
	TargetType     string
	ReportedUserID string
	From           *time.Time
	To             *time.Time
	SortAsc        bool
}

// LogFilters narrows a moderation log listing. Zero values mean "any".
type LogFilters struct {
	Action  string
	UserID  string
	Search  string
	From    *time.Time
	To      *time.Time
	SortAsc bool
}

// ModerationUpdate describes the profile-side effect of a warning. An empty
// SetStatus leaves the moderation status untouched (plain warnings only
// raise the warn count).
type ModerationUpdate struct {
	SetStatus       string
	SuspensionUntil *time.Time
}

// Storage is the persistence boundary of the moderation core. Single-row
// getters return (nil, nil) when the row does not exist; callers decide
// whether a missing row is an error.
type Storage interface {
	// Profiles
	GetProfileByID(id string) (*models.Profile, error)
	GetProfileByUsername(username string) (*models.Profile, error)
	SaveProfile(p *models.Profile) error
	IsFollowing(followerID, followeeID string) (bool, error)

	// Catches
	GetCatchByID(id string) (*models.Catch, error)
	SaveCatch(c *models.Catch) error
	SetCatchDeleted(id string, deletedAt *time.Time) error

	// Comments
	SaveComment(c *models.Comment) error
	GetCommentByID(id string) (*models.Comment, error)
	GetCommentsForCatch(catchID string) ([]models.Comment, error)
	SetCommentDeleted(id string, deletedAt *time.Time) error

	// Reports
	SaveReport(r *models.Report) error
	GetReportByID(id string) (*models.Report, error)
	ListReports(f ReportFilters, limit, offset int) ([]models.Report, error)
	UpdateReportStatus(id, adminID, status, notes string) error

	// Warnings and escalation
	ApplyWarning(w *models.UserWarning, update ModerationUpdate, entry *models.ModerationLogEntry) error
	ClearModeration(userID string, entry *models.ModerationLogEntry) error
	GetWarningsForUser(userID string) ([]models.UserWarning, error)

	// Moderation log
	AppendModerationLog(e *models.ModerationLogEntry) error
	ListModerationLog(f LogFilters, limit, offset int) ([]models.ModerationLogEntry, error)
	ListModerationLogForTarget(targetType, targetID string, limit int) ([]models.ModerationLogEntry, error)

	// Rate limiting
	TryRecordAttempt(userID, action string, max int, window time.Duration) (bool, error)
	CountAttempts(userID, action string, window time.Duration) (int64, *time.Time, error)
	CleanupAttempts(olderThan time.Duration) (int64, error)
	AttemptUsage(userID string) ([]ActionUsage, error)

	// Notifications
	SaveNotification(n *models.Notification) error
	PublishNotification(event models.NotificationEvent) error

	// Moderation fast path (Redis)
	SetSuspensionFlag(userID, status string, ttl time.Duration) error
	ClearSuspensionFlag(userID string) error
	GetSuspensionFlag(userID string) (string, error)
}

// Service implements Storage over PostgreSQL (GORM) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor. Redis may be nil for tools that only
// touch PostgreSQL (the admin CLI).
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// --- Profiles ---

func (s *Service) GetProfileByID(id string) (*models.Profile, error) {
	var p models.Profile
	err := s.DB.Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) GetProfileByUsername(username string) (*models.Profile, error) {
	var p models.Profile
	err := s.DB.Where("username = ?", username).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) SaveProfile(p *models.Profile) error {
	return s.DB.Save(p).Error
}

func (s *Service) IsFollowing(followerID, followeeID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

// --- Catches ---

func (s *Service) GetCatchByID(id string) (*models.Catch, error) {
	var c models.Catch
	err := s.DB.Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) SaveCatch(c *models.Catch) error {
	return s.DB.Save(c).Error
}

func (s *Service) SetCatchDeleted(id string, deletedAt *time.Time) error {
	return s.DB.Model(&models.Catch{}).
		Where("id = ?", id).
		Update("deleted_at", deletedAt).Error
}

// --- Comments ---

func (s *Service) SaveComment(c *models.Comment) error {
	if err := s.DB.Create(c).Error; err != nil {
		log.Printf("ERROR: Failed to save comment on catch %s: %v", c.CatchID, err)
		return err
	}
	return nil
}

func (s *Service) GetCommentByID(id string) (*models.Comment, error) {
	var c models.Comment
	err := s.DB.Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) GetCommentsForCatch(catchID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.DB.Where("catch_id = ?", catchID).
		Order("created_at asc").
		Find(&comments).Error
	if err != nil {
		log.Printf("ERROR: Failed to load comments for catch %s: %v", catchID, err)
		return nil, err
	}
	return comments, nil
}

func (s *Service) SetCommentDeleted(id string, deletedAt *time.Time) error {
	return s.DB.Model(&models.Comment{}).
		Where("id = ?", id).
		Update("deleted_at", deletedAt).Error
}

// --- Reports ---

func (s *Service) SaveReport(r *models.Report) error {
	if r.Status == "" {
		r.Status = config.ReportOpen
	}
	if err := s.DB.Create(r).Error; err != nil {
		log.Printf("ERROR: Failed to save report against %s %s: %v", r.TargetType, r.TargetID, err)
		return err
	}
	return nil
}

func (s *Service) GetReportByID(id string) (*models.Report, error) {
	var r models.Report
	err := s.DB.Where("id = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Service) ListReports(f ReportFilters, limit, offset int) ([]models.Report, error) {
	q := s.DB.Model(&models.Report{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.TargetType != "" {
		q = q.Where("target_type = ?", f.TargetType)
	}
	if f.ReportedUserID != "" {
		// The reported user is derived from the target, not stored on the
		// report row, so the filter resolves ownership per target type.
		q = q.Where(`
			(target_type = 'profile' AND target_id = @uid)
			OR (target_type = 'catch' AND target_id IN (SELECT id FROM catches WHERE user_id = @uid))
			OR (target_type = 'comment' AND target_id IN (SELECT id FROM comments WHERE user_id = @uid))`,
			map[string]interface{}{"uid": f.ReportedUserID})
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	order := "created_at DESC"
	if f.SortAsc {
		order = "created_at ASC"
	}

	var reports []models.Report
	err := q.Order(order).Limit(limit).Offset(offset).Find(&reports).Error
	return reports, err
}

func (s *Service) UpdateReportStatus(id, adminID, status, notes string) error {
	return s.DB.Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           status,
			"resolution_notes": notes,
			"reviewed_at":      gorm.Expr("NOW()"),
			"reviewed_by":      adminID,
		}).Error
}

// --- Warnings and escalation ---

// ApplyWarning applies the full escalation as one transaction: the warning
// row, the profile counter/status update and the audit log entry either all
// land or none do.
func (s *Service) ApplyWarning(w *models.UserWarning, update ModerationUpdate, entry *models.ModerationLogEntry) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(w).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"warn_count": gorm.Expr("warn_count + 1"),
		}
		if update.SetStatus != "" {
			updates["moderation_status"] = update.SetStatus
			updates["suspension_until"] = update.SuspensionUntil
		}

		res := tx.Model(&models.Profile{}).Where("id = ?", w.UserID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Create(entry).Error
	})
}

func (s *Service) ClearModeration(userID string, entry *models.ModerationLogEntry) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Profile{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"moderation_status": config.StatusActive,
			"suspension_until":  nil,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Create(entry).Error
	})
}

func (s *Service) GetWarningsForUser(userID string) ([]models.UserWarning, error) {
	var warnings []models.UserWarning
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&warnings).Error
	return warnings, err
}

// --- Moderation log ---

func (s *Service) AppendModerationLog(e *models.ModerationLogEntry) error {
	if err := s.DB.Create(e).Error; err != nil {
		log.Printf("ERROR: Failed to append moderation log (%s on %s %s): %v", e.Action, e.TargetType, e.TargetID, err)
		return err
	}
	return nil
}

func (s *Service) ListModerationLog(f LogFilters, limit, offset int) ([]models.ModerationLogEntry, error) {
	q := s.DB.Model(&models.ModerationLogEntry{})

	if f.Action != "" {
		q = q.Where("moderation_log_entries.action = ?", f.Action)
	}
	if f.UserID != "" {
		q = q.Where("moderation_log_entries.user_id = ?", f.UserID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Joins("LEFT JOIN profiles ON profiles.id = moderation_log_entries.admin_id").
			Where("profiles.username ILIKE ? OR moderation_log_entries.metadata ILIKE ? OR moderation_log_entries.target_id ILIKE ?",
				like, like, like)
	}
	if f.From != nil {
		q = q.Where("moderation_log_entries.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("moderation_log_entries.created_at <= ?", *f.To)
	}

	order := "moderation_log_entries.created_at DESC"
	if f.SortAsc {
		order = "moderation_log_entries.created_at ASC"
	}

	var entries []models.ModerationLogEntry
	err := q.Order(order).Limit(limit).Offset(offset).Find(&entries).Error
	return entries, err
}

func (s *Service) ListModerationLogForTarget(targetType, targetID string, limit int) ([]models.ModerationLogEntry, error) {
	var entries []models.ModerationLogEntry
	err := s.DB.Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// --- Rate limiting ---

// TryRecordAttempt counts the caller's in-window attempts and inserts a new
// one, or inserts nothing when the cap is reached. The count and the insert
// run under a per-(user, action) advisory lock; at READ COMMITTED two
// concurrent statements would each count their own snapshot and could both
// slip under the cap.
func (s *Service) TryRecordAttempt(userID, action string, max int, window time.Duration) (bool, error) {
	var admitted bool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`SELECT pg_advisory_xact_lock(hashtext(? || ':' || ?))`,
			userID, action).Error; err != nil {
			return err
		}

		res := tx.Exec(`
			INSERT INTO rate_limit_records (user_id, action, created_at)
			SELECT ?, ?, NOW()
			WHERE (
				SELECT COUNT(*) FROM rate_limit_records
				WHERE user_id = ? AND action = ?
				AND created_at >= NOW() - make_interval(secs => ?)
			) < ?`,
			userID, action, userID, action, window.Seconds(), max)
		if res.Error != nil {
			return res.Error
		}
		admitted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		log.Printf("ERROR: Rate limit insert failed for %s/%s: %v", userID, action, err)
		return false, err
	}
	return admitted, nil
}

func (s *Service) CountAttempts(userID, action string, window time.Duration) (int64, *time.Time, error) {
	var row struct {
		Count  int64
		Oldest *time.Time
	}
	err := s.DB.Raw(`
		SELECT COUNT(*) AS count, MIN(created_at) AS oldest
		FROM rate_limit_records
		WHERE user_id = ? AND action = ?
		AND created_at >= NOW() - make_interval(secs => ?)`,
		userID, action, window.Seconds()).Scan(&row).Error
	if err != nil {
		return 0, nil, err
	}
	return row.Count, row.Oldest, nil
}

func (s *Service) CleanupAttempts(olderThan time.Duration) (int64, error) {
	res := s.DB.Exec(`
		DELETE FROM rate_limit_records
		WHERE created_at < NOW() - make_interval(secs => ?)`,
		olderThan.Seconds())
	return res.RowsAffected, res.Error
}

func (s *Service) AttemptUsage(userID string) ([]ActionUsage, error) {
	var usage []ActionUsage
	err := s.DB.Raw(`
		SELECT action,
		       COUNT(*) AS count,
		       MIN(created_at) AS oldest_attempt,
		       MAX(created_at) AS newest_attempt
		FROM rate_limit_records
		WHERE user_id = ?
		GROUP BY action
		ORDER BY action`,
		userID).Scan(&usage).Error
	return usage, err
}

// --- Notifications ---

func (s *Service) SaveNotification(n *models.Notification) error {
	return s.DB.Create(n).Error
}

// PublishNotification pushes an event onto the Redis pub/sub channel the
// notify hub listens on.
func (s *Service) PublishNotification(event models.NotificationEvent) error {
	if s.Redis == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.Redis.Publish(s.Ctx, NotifyChannel, string(payload)).Err()
}

// SubscribeNotifications subscribes to the notification channel. The notify
// hub owns the returned PubSub.
func (s *Service) SubscribeNotifications() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, NotifyChannel)
}

// --- Moderation fast path ---

// SetSuspensionFlag caches the moderation status in Redis. A non-positive
// TTL means no expiry (permanent ban).
func (s *Service) SetSuspensionFlag(userID, status string, ttl time.Duration) error {
	if s.Redis == nil {
		return nil
	}
	key := config.SuspensionKeyPrefix + userID
	if ttl <= 0 {
		return s.Redis.Set(s.Ctx, key, status, 0).Err()
	}
	return s.Redis.Set(s.Ctx, key, status, ttl).Err()
}

func (s *Service) ClearSuspensionFlag(userID string) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Del(s.Ctx, config.SuspensionKeyPrefix+userID).Err()
}

// GetSuspensionFlag returns the cached status or "" when no flag is set.
func (s *Service) GetSuspensionFlag(userID string) (string, error) {
	if s.Redis == nil {
		return "", nil
	}
	status, err := s.Redis.Get(s.Ctx, config.SuspensionKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}
