package models

import (
	"github.com/lib/pq" // Необхідний для pq.StringArray
)

// GuildSettings holds the per-guild wiring the bot needs at runtime: the
// audience roles, the notice role mentioned in announcements, the channels for
// moderation output, and extra roles treated as administrators.
type GuildSettings struct {
	GuildID         string         `gorm:"primaryKey" json:"guild_id"`
	MaleRoleID      string         `json:"male_role_id"`
	FemaleRoleID    string         `json:"female_role_id"`
	NoticeRoleID    string         `json:"notice_role_id"`
	LogChannelID    string         `json:"log_channel_id"`
	BackupChannelID string         `json:"backup_channel_id"`
	AdminRoleIDs    pq.StringArray `gorm:"type:text[]" json:"admin_role_ids"`
	Language        string         `json:"language"`
}
