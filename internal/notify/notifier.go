// Package notify persists user notifications and fans them out live: rows
// go to PostgreSQL, events go over Redis pub/sub to the websocket hub, and
// selected moderation events can additionally alert admins via Telegram.
package notify

import (
	"log"

	"anglerlog/backend/internal/models"
	"anglerlog/backend/internal/storage"
)

// Notifier creates notifications. Delivery is best effort: a failed
// publish is logged, never surfaced to the triggering request.
type Notifier struct {
	Storage storage.Storage
}

// NewNotifier creates a new notifier.
func NewNotifier(s storage.Storage) *Notifier {
	return &Notifier{Storage: s}
}

// Notify stores a notification for userID and publishes the live event.
// Self-notifications are silently skipped.
func (n *Notifier) Notify(userID, notifType, actorID, subjectType, subjectID, body string) {
	if userID == "" || userID == actorID {
		return
	}

	row := &models.Notification{
		UserID:      userID,
		Type:        notifType,
		ActorID:     actorID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Body:        body,
	}
	if err := n.Storage.SaveNotification(row); err != nil {
		log.Printf("WARNING: Failed to save notification for user %s: %v", userID, err)
		return
	}

	event := models.NotificationEvent{
		UserID:      userID,
		Type:        notifType,
		ActorID:     actorID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Body:        body,
	}
	if err := n.Storage.PublishNotification(event); err != nil {
		log.Printf("WARNING: Failed to publish notification event for user %s: %v", userID, err)
	}
}
