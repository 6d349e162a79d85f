// Package auditlog maintains the append-only moderation journal. Appends are
// fire-and-forget: a row that cannot be written is reported in the process log
// and dropped, never bubbled up to the user action that produced it.
package auditlog

import (
	"fmt"
	"log"
	"time"

	"roomgogo/bot/internal/config"
	"roomgogo/bot/internal/models"
	"roomgogo/bot/internal/storage"
)

// Action tags recorded in admin_logs.
const (
	ActionRoomCreated     = "room_created"
	ActionRoomDeleted     = "room_deleted"
	ActionRoomAutoDeleted = "room_auto_deleted"
	ActionRoomsCleared    = "rooms_cleared"
	ActionBlacklistAdd    = "blacklist_add"
	ActionBlacklistRemove = "blacklist_remove"
	ActionCommandRun      = "command_executed"
	ActionButtonPressed   = "button_clicked"
	ActionLogsPurged      = "logs_purged"
)

// Service handles journal writes and reads.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new audit log service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Append records an action performed by a user. An empty targetID is stored
// as NULL.
func (s *Service) Append(action, actorID, targetID, details string) {
	s.append(action, &actorID, targetID, details)
}

// System records an action the bot performed on its own; the actor column
// stays NULL.
func (s *Service) System(action, targetID, details string) {
	s.append(action, nil, targetID, details)
}

func (s *Service) append(action string, actorID *string, targetID, details string) {
	entry := &models.AdminLog{
		Action:    action,
		ActorID:   actorID,
		Details:   details,
		CreatedAt: time.Now(),
	}
	if targetID != "" {
		entry.TargetID = &targetID
	}

	if err := s.Storage.AppendAdminLog(entry); err != nil {
		log.Printf("ERROR: Dropped admin log entry %q: %v", action, err)
		return
	}

	actor := "system"
	if actorID != nil {
		actor = *actorID
	}
	log.Printf("INFO: Admin log: %s - actor: %s - target: %s - details: %s",
		action, actor, targetID, details)
}

// Recent returns the newest entries. A non-positive limit falls back to the
// default; anything above the cap is clamped.
func (s *Service) Recent(limit int) ([]models.AdminLog, error) {
	if limit <= 0 {
		limit = config.DefaultLogLimit
	}
	if limit > config.MaxLogLimit {
		limit = config.MaxLogLimit
	}
	return s.Storage.RecentAdminLogs(limit)
}

// PurgeOlderThan deletes entries older than the cutoff and records the sweep
// itself when anything was removed.
func (s *Service) PurgeOlderThan(cutoff time.Time) (int64, error) {
	deleted, err := s.Storage.PurgeAdminLogsBefore(cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.System(ActionLogsPurged, "", fmt.Sprintf("deleted %d entries", deleted))
	}
	return deleted, nil
}
