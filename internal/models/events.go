package models

import (
	"time"

	"github.com/google/uuid"
)

// Feed event types published to the admin event stream.
const (
	EventRoomCreated     = "room_created"
	EventRoomDeleted     = "room_deleted"
	EventRoomReconciled  = "room_reconciled"
	EventBlacklistChange = "blacklist_change"
	EventBackupFinished  = "backup_finished"
)

// RoomEvent is one entry on the live admin feed. It is serialized to Redis
// and fanned out to websocket subscribers.
type RoomEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	GuildID   string    `json:"guild_id"`
	RoomID    uint      `json:"room_id,omitempty"`
	ChannelID string    `json:"channel_id,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	Details   string    `json:"details,omitempty"`
	At        time.Time `json:"at"`
}

// NewRoomEvent prepares a feed event with a fresh ID and timestamp; the
// caller fills in the rest.
func NewRoomEvent(eventType, guildID string) RoomEvent {
	return RoomEvent{
		EventID: uuid.New().String(),
		Type:    eventType,
		GuildID: guildID,
		At:      time.Now(),
	}
}

// RoomCreateRequest is the parsed form of a lobby modal submission.
type RoomCreateRequest struct {
	GuildID   string
	CreatorID string
	Audience  string
	Details   string
}

// RoomDeleteRequest is the parsed form of a /delete-room invocation. The
// channel is the one the command was issued in; actor fields carry what the
// authorization check needs.
type RoomDeleteRequest struct {
	GuildID      string
	ChannelID    string
	ActorID      string
	ActorRoleIDs []string
	ActorIsAdmin bool
}

// VoiceStateEvent is the parsed form of a voice state update. Either channel
// ID may be empty; both sides get reconciled.
type VoiceStateEvent struct {
	GuildID       string
	UserID        string
	JoinedChannel string
	LeftChannel   string
}

// ChannelDeleteEvent is the parsed form of an externally deleted channel.
type ChannelDeleteEvent struct {
	GuildID   string
	ChannelID string
}
