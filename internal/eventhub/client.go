package eventhub

import "roomgogo/bot/internal/models"

// Client is the interface for one subscriber of the room event feed. It
// abstracts the underlying transport, allowing the hub to manage different
// connection types uniformly.
type Client interface {
	// GetViewerID returns the identifier of the operator watching the feed.
	GetViewerID() string

	// GetSendChannel returns the channel to which the ManagerService (hub)
	// pushes events intended for this client. It is a send-only channel.
	GetSendChannel() chan<- models.RoomEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's send channel, which stops its write pump.
	Close()
}
