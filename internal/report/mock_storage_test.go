package report_test

import (
	"time"

	"anglerlog/backend/internal/models"
	"anglerlog/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a hand-written mock of storage.Storage.
type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

func (m *MockStorage) GetProfileByID(id string) (*models.Profile, error) {
	args := m.Called(id)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *MockStorage) GetProfileByUsername(username string) (*models.Profile, error) {
	args := m.Called(username)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *MockStorage) SaveProfile(p *models.Profile) error {
	args := m.Called(p)
	return args.Error(0)
}

func (m *MockStorage) IsFollowing(followerID, followeeID string) (bool, error) {
	args := m.Called(followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetCatchByID(id string) (*models.Catch, error) {
	args := m.Called(id)
	c, _ := args.Get(0).(*models.Catch)
	return c, args.Error(1)
}

func (m *MockStorage) SaveCatch(c *models.Catch) error {
	args := m.Called(c)
	return args.Error(0)
}

func (m *MockStorage) SetCatchDeleted(id string, deletedAt *time.Time) error {
	args := m.Called(id, deletedAt)
	return args.Error(0)
}

func (m *MockStorage) SaveComment(c *models.Comment) error {
	args := m.Called(c)
	return args.Error(0)
}

func (m *MockStorage) GetCommentByID(id string) (*models.Comment, error) {
	args := m.Called(id)
	c, _ := args.Get(0).(*models.Comment)
	return c, args.Error(1)
}

func (m *MockStorage) GetCommentsForCatch(catchID string) ([]models.Comment, error) {
	args := m.Called(catchID)
	c, _ := args.Get(0).([]models.Comment)
	return c, args.Error(1)
}

func (m *MockStorage) SetCommentDeleted(id string, deletedAt *time.Time) error {
	args := m.Called(id, deletedAt)
	return args.Error(0)
}

func (m *MockStorage) SaveReport(r *models.Report) error {
	args := m.Called(r)
	return args.Error(0)
}

func (m *MockStorage) GetReportByID(id string) (*models.Report, error) {
	args := m.Called(id)
	r, _ := args.Get(0).(*models.Report)
	return r, args.Error(1)
}

func (m *MockStorage) ListReports(f storage.ReportFilters, limit, offset int) ([]models.Report, error) {
	args := m.Called(f, limit, offset)
	r, _ := args.Get(0).([]models.Report)
	return r, args.Error(1)
}

func (m *MockStorage) UpdateReportStatus(id, adminID, status, notes string) error {
	args := m.Called(id, adminID, status, notes)
	return args.Error(0)
}

func (m *MockStorage) ApplyWarning(w *models.UserWarning, update storage.ModerationUpdate, entry *models.ModerationLogEntry) error {
	args := m.Called(w, update, entry)
	return args.Error(0)
}

func (m *MockStorage) ClearModeration(userID string, entry *models.ModerationLogEntry) error {
	args := m.Called(userID, entry)
	return args.Error(0)
}

func (m *MockStorage) GetWarningsForUser(userID string) ([]models.UserWarning, error) {
	args := m.Called(userID)
	w, _ := args.Get(0).([]models.UserWarning)
	return w, args.Error(1)
}

func (m *MockStorage) AppendModerationLog(e *models.ModerationLogEntry) error {
	args := m.Called(e)
	return args.Error(0)
}

func (m *MockStorage) ListModerationLog(f storage.LogFilters, limit, offset int) ([]models.ModerationLogEntry, error) {
	args := m.Called(f, limit, offset)
	e, _ := args.Get(0).([]models.ModerationLogEntry)
	return e, args.Error(1)
}

func (m *MockStorage) ListModerationLogForTarget(targetType, targetID string, limit int) ([]models.ModerationLogEntry, error) {
	args := m.Called(targetType, targetID, limit)
	e, _ := args.Get(0).([]models.ModerationLogEntry)
	return e, args.Error(1)
}

func (m *MockStorage) TryRecordAttempt(userID, action string, max int, window time.Duration) (bool, error) {
	args := m.Called(userID, action, max, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) CountAttempts(userID, action string, window time.Duration) (int64, *time.Time, error) {
	args := m.Called(userID, action, window)
	oldest, _ := args.Get(1).(*time.Time)
	return args.Get(0).(int64), oldest, args.Error(2)
}

func (m *MockStorage) CleanupAttempts(olderThan time.Duration) (int64, error) {
	args := m.Called(olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) AttemptUsage(userID string) ([]storage.ActionUsage, error) {
	args := m.Called(userID)
	u, _ := args.Get(0).([]storage.ActionUsage)
	return u, args.Error(1)
}

func (m *MockStorage) SaveNotification(n *models.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *MockStorage) PublishNotification(event models.NotificationEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockStorage) SetSuspensionFlag(userID, status string, ttl time.Duration) error {
	args := m.Called(userID, status, ttl)
	return args.Error(0)
}

func (m *MockStorage) ClearSuspensionFlag(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) GetSuspensionFlag(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
