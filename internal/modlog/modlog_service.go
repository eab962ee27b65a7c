// Package modlog maintains the append-only moderation audit trail and is
// the single place metadata is redacted before leaving the service.
package modlog

import (
	"encoding/json"
	"log"
	"strings"
	"unicode"

	"anglerlog/backend/internal/config"
	"anglerlog/backend/internal/models"
	"anglerlog/backend/internal/storage"
)

// Service handles moderation log writes and filtered reads.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new moderation log service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Append records one completed moderation action. Failed admin attempts are
// never logged, only applied state changes.
func (s *Service) Append(adminID, action, targetType, targetID string, userID *string, metadata map[string]interface{}) error {
	entry := &models.ModerationLogEntry{
		Action:     action,
		AdminID:    adminID,
		TargetType: targetType,
		TargetID:   targetID,
		UserID:     userID,
		Metadata:   EncodeMetadata(metadata),
	}
	return s.Storage.AppendModerationLog(entry)
}

// List returns log entries matching the filters, with metadata redacted.
func (s *Service) List(f storage.LogFilters, limit, offset int) ([]models.ModerationLogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	entries, err := s.Storage.ListModerationLog(f, limit, offset)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Metadata = RedactMetadata(entries[i].Metadata)
	}
	return entries, nil
}

// ForTarget returns the recent log entries for one moderation target,
// redacted. Used by the report moderation context.
func (s *Service) ForTarget(targetType, targetID string, limit int) ([]models.ModerationLogEntry, error) {
	entries, err := s.Storage.ListModerationLogForTarget(targetType, targetID, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Metadata = RedactMetadata(entries[i].Metadata)
	}
	return entries, nil
}

// EncodeMetadata serializes a metadata map for storage. A nil map encodes
// to the empty string.
func EncodeMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return ""
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("WARNING: Failed to encode moderation metadata: %v", err)
		return ""
	}
	return string(data)
}

// RedactMetadata replaces values stored under denylisted keys with a
// placeholder. Non-JSON metadata passes through untouched.
func RedactMetadata(raw string) string {
	if raw == "" {
		return raw
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return raw
	}

	changed := false
	for key := range metadata {
		if isSensitiveKey(key) {
			metadata[key] = config.RedactedPlaceholder
			changed = true
		}
	}
	if !changed {
		return raw
	}

	data, err := json.Marshal(metadata)
	if err != nil {
		return raw
	}
	return string(data)
}

// isSensitiveKey matches denylist patterns against the key's tokens, not
// raw substrings: "reporter_ip" is sensitive, "description" is not. Short
// patterns ("ip", "key", "jwt") only match whole tokens; longer ones also
// match inside a token so "sessionid" and "jwttoken" stay covered.
func isSensitiveKey(key string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(key), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, pattern := range config.RedactedMetadataKeys {
		for _, token := range tokens {
			if token == pattern {
				return true
			}
			if len(pattern) > 3 && strings.Contains(token, pattern) {
				return true
			}
		}
	}
	return false
}
