package eventhub_test

import "roomgogo/bot/internal/models"

type MockClient struct {
	viewerID    string
	RecvChannel chan models.RoomEvent
	closed      bool
}

func newMockClient(viewerID string) *MockClient {
	return &MockClient{
		viewerID:    viewerID,
		RecvChannel: make(chan models.RoomEvent, 10),
	}
}

func (c *MockClient) GetViewerID() string {
	return c.viewerID
}

func (c *MockClient) GetSendChannel() chan<- models.RoomEvent {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.closed = true
}
