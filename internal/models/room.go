package models

import "time"

// Audience values accepted for a room. They decide which guild role may see
// the room while it is open.
const (
	AudienceMale   = "male"
	AudienceFemale = "female"
	AudienceAll    = "all"
)

// Room represents one active voice meetup room: a category holding a paired
// text and voice channel, plus the anonymous role used to hide the room from
// the creator's blacklist. A creator owns at most one active room; the row is
// hard-deleted when the room is torn down.
type Room struct {
	// RoomID is the auto-incremented registry identifier.
	RoomID uint `gorm:"primaryKey" json:"room_id"`
	// GuildID is the guild the room lives in.
	GuildID string `gorm:"not null" json:"guild_id"`
	// TextChannelID is the paired text channel.
	TextChannelID string `gorm:"uniqueIndex;not null" json:"text_channel_id"`
	// VoiceChannelID is the paired voice channel.
	VoiceChannelID string `gorm:"uniqueIndex;not null" json:"voice_channel_id"`
	// CategoryID is the category created to contain the pair.
	CategoryID string `json:"category_id"`
	// CreatorID is the owner. The unique index enforces one active room
	// per creator at the store level.
	CreatorID string `gorm:"uniqueIndex;not null" json:"creator_id"`
	// HiddenRoleID is the anonymous role assigned to blacklisted members.
	HiddenRoleID string `gorm:"not null" json:"hidden_role_id"`
	// Audience is one of AudienceMale, AudienceFemale, AudienceAll.
	Audience string `gorm:"not null" json:"audience"`
	// Details is the creator-supplied description shown in the announcement.
	Details string `gorm:"type:text" json:"details"`
	// CreatedAt is the timestamp when the room was provisioned.
	CreatedAt time.Time `json:"created_at"`
}
