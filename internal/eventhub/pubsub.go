package eventhub

import (
	"encoding/json"
	"log"

	"roomgogo/bot/internal/models"
)

// StartPubSubListener runs a goroutine that decodes events from the Redis
// subscription and feeds them into the hub. A hub constructed without a
// storage backend skips the subscription and serves registrations only.
func (m *ManagerService) StartPubSubListener() {
	if m.Storage == nil {
		return
	}

	go func() {
		pubsub := m.Storage.SubscribeEvents()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var ev models.RoomEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("ERROR: Failed to decode room event: %v", err)
				continue
			}
			m.PubSubCh <- ev
		}
	}()
}
