package notify

import "anglerlog/backend/internal/models"

// Client is the interface for one connected notification stream. It
// abstracts the underlying transport so the hub can manage connections
// uniformly.
type Client interface {
	// GetUserID returns the unique identifier for the user associated with the client.
	GetUserID() string

	// GetSendChannel returns the channel the hub pushes this client's
	// events into. It is a send-only channel.
	GetSendChannel() chan<- models.NotificationEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close gracefully shuts down the client's connection and channels.
	Close()
}
