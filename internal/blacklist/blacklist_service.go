// Package blacklist manages the per-user block lists consulted whenever a
// room is provisioned or listed.
package blacklist

import (
	"errors"
	"log"
	"time"

	"roomgogo/bot/internal/auditlog"
	"roomgogo/bot/internal/models"
	"roomgogo/bot/internal/storage"
)

// ErrSelfBlock rejects an owner blacklisting themselves.
var ErrSelfBlock = errors.New("cannot blacklist yourself")

// Service handles the business logic for block lists.
type Service struct {
	Storage storage.Storage
	Audit   *auditlog.Service
}

// NewService creates a new blacklist service.
func NewService(s storage.Storage, audit *auditlog.Service) *Service {
	return &Service{Storage: s, Audit: audit}
}

// Block adds blockedID to the owner's list or refreshes the stored reason
// when the pair already exists.
func (s *Service) Block(guildID, ownerID, blockedID, reason string) error {
	if ownerID == blockedID {
		return ErrSelfBlock
	}

	now := time.Now()
	entry := &models.BlacklistEntry{
		OwnerID:       ownerID,
		BlockedUserID: blockedID,
		Reason:        reason,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Storage.UpsertBlacklistEntry(entry); err != nil {
		return err
	}

	s.Audit.Append(auditlog.ActionBlacklistAdd, ownerID, blockedID, reason)

	event := models.NewRoomEvent(models.EventBlacklistChange, guildID)
	event.ActorID = ownerID
	event.Details = "blocked " + blockedID
	s.publish(event)

	log.Printf("INFO: Blacklist: %s blocked %s (reason: %s)", ownerID, blockedID, reason)
	return nil
}

// Unblock removes blockedID from the owner's list and reports whether an
// entry existed.
func (s *Service) Unblock(guildID, ownerID, blockedID string) (bool, error) {
	removed, err := s.Storage.DeleteBlacklistEntry(ownerID, blockedID)
	if err != nil || !removed {
		return removed, err
	}

	s.Audit.Append(auditlog.ActionBlacklistRemove, ownerID, blockedID, "")

	event := models.NewRoomEvent(models.EventBlacklistChange, guildID)
	event.ActorID = ownerID
	event.Details = "unblocked " + blockedID
	s.publish(event)

	log.Printf("INFO: Blacklist: %s unblocked %s", ownerID, blockedID)
	return true, nil
}

// Entries returns the owner's full block list, newest first.
func (s *Service) Entries(ownerID string) ([]models.BlacklistEntry, error) {
	return s.Storage.ListBlacklistEntries(ownerID)
}

func (s *Service) publish(event models.RoomEvent) {
	if err := s.Storage.PublishEvent(event); err != nil {
		log.Printf("WARNING: Failed to publish %s event: %v", event.Type, err)
	}
}
