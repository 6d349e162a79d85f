package models

import "time"

// AdminLog is one append-only audit row. ActorID is nil for actions the bot
// performed on its own (cascade cleanup, retention sweeps).
type AdminLog struct {
	LogID     uint      `gorm:"primaryKey" json:"log_id"`
	Action    string    `gorm:"not null;index" json:"action"`
	ActorID   *string   `gorm:"index" json:"actor_id"`
	TargetID  *string   `json:"target_id"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
