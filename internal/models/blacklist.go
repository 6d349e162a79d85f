package models

import "time"

// BlacklistEntry is one owner -> blocked-user pair. The composite primary key
// keeps at most one row per pair; re-blocking updates Reason and UpdatedAt in
// place.
type BlacklistEntry struct {
	OwnerID       string    `gorm:"primaryKey" json:"owner_id"`
	BlockedUserID string    `gorm:"primaryKey" json:"blocked_user_id"`
	Reason        string    `gorm:"type:text" json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName keeps the historical table name.
func (BlacklistEntry) TableName() string {
	return "user_blacklists"
}
