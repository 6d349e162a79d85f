// Package eventhub fans the Redis room event stream out to connected
// operator dashboards over WebSocket.
package eventhub

import (
	"log"

	"roomgogo/bot/internal/models"

	"github.com/redis/go-redis/v9"
)

// EventSubscriber is the slice of the storage layer the hub needs.
type EventSubscriber interface {
	SubscribeEvents() *redis.PubSub
}

// ManagerService owns the set of connected feed clients. All map access
// happens on the Run goroutine; other goroutines talk to it through the
// channels.
type ManagerService struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client

	// PubSubCh carries events decoded from Redis into the Run loop.
	PubSubCh chan models.RoomEvent

	Storage EventSubscriber
}

func NewManagerService(s EventSubscriber) *ManagerService {
	return &ManagerService{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		PubSubCh:     make(chan models.RoomEvent),
		Storage:      s,
	}
}

// Run starts the Redis listener and processes hub commands until the process
// exits.
func (m *ManagerService) Run() {
	m.StartPubSubListener()

	for {
		select {
		case client := <-m.RegisterCh:
			id := client.GetViewerID()
			if old, ok := m.Clients[id]; ok && old != client {
				// A reconnect replaces the stale connection.
				old.Close()
			}
			m.Clients[id] = client
			log.Printf("INFO: Feed client %s connected (%d online)", id, len(m.Clients))

		case client := <-m.UnregisterCh:
			id := client.GetViewerID()
			if m.Clients[id] == client {
				delete(m.Clients, id)
				client.Close()
				log.Printf("INFO: Feed client %s disconnected (%d online)", id, len(m.Clients))
			}

		case ev := <-m.PubSubCh:
			m.broadcast(ev)
		}
	}
}

// broadcast delivers one event to every connected client. A client whose
// buffer is full gets dropped so it cannot stall the feed for the rest.
func (m *ManagerService) broadcast(ev models.RoomEvent) {
	for id, client := range m.Clients {
		select {
		case client.GetSendChannel() <- ev:
		default:
			log.Printf("WARNING: Feed client %s is not keeping up, dropping", id)
			delete(m.Clients, id)
			client.Close()
		}
	}
}
