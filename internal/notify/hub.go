package notify

import (
	"encoding/json"
	"log"

	"anglerlog/backend/internal/models"
	"anglerlog/backend/internal/storage"
)

// Hub routes notification events to connected clients. Events arrive over
// Redis pub/sub, so every server instance sees every event and delivers to
// whichever clients it holds.
type Hub struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client

	Storage *storage.Service

	pubSubCh chan models.NotificationEvent
}

// NewHub creates a new notification hub.
func NewHub(s *storage.Service) *Hub {
	return &Hub{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		Storage:      s,
		pubSubCh:     make(chan models.NotificationEvent),
	}
}

// startPubSubListener runs a goroutine that relays Redis pub/sub payloads
// into the hub's event channel.
func (h *Hub) startPubSubListener() {
	go func() {
		pubsub := h.Storage.SubscribeNotifications()
		defer pubsub.Close()

		ch := pubsub.Channel()
		for msg := range ch {
			var event models.NotificationEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("ERROR: Failed to unmarshal notification event: %v", err)
				continue
			}
			h.pubSubCh <- event
		}
	}()
}

// Run is the hub's dispatch loop. One goroutine owns the Clients map;
// register, unregister and delivery all go through it.
func (h *Hub) Run() {
	h.startPubSubListener()

	for {
		select {
		case client := <-h.RegisterCh:
			if old, ok := h.Clients[client.GetUserID()]; ok {
				old.Close()
			}
			h.Clients[client.GetUserID()] = client
			log.Printf("INFO: Notification stream connected for user %s", client.GetUserID())

		case client := <-h.UnregisterCh:
			if current, ok := h.Clients[client.GetUserID()]; ok && current == client {
				delete(h.Clients, client.GetUserID())
				client.Close()
			}

		case event := <-h.pubSubCh:
			client, ok := h.Clients[event.UserID]
			if !ok {
				continue // user not connected here; the row is their inbox
			}
			select {
			case client.GetSendChannel() <- event:
			default:
				// Slow consumer. Drop the connection; they still have
				// the persisted notification.
				delete(h.Clients, event.UserID)
				client.Close()
			}
		}
	}
}
