// Package rooms implements the voice meetup room lifecycle: provisioning the
// category, channel pair and anonymous role, tearing everything down again,
// and recomputing visibility whenever voice occupancy changes.
package rooms

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"roomgogo/bot/internal/auditlog"
	"roomgogo/bot/internal/config"
	"roomgogo/bot/internal/models"
	"roomgogo/bot/internal/storage"

	"github.com/google/uuid"
)

// Service handles the business logic for rooms.
type Service struct {
	Storage storage.Storage
	API     ChannelAPI
	Audit   *auditlog.Service
}

// NewService creates a new room service.
func NewService(s storage.Storage, api ChannelAPI, audit *auditlog.Service) *Service {
	return &Service{Storage: s, API: api, Audit: audit}
}

// hiddenRoleName derives an anonymous role name. The random salt keeps the
// name unlinkable to the creator while the hash avoids collisions.
func hiddenRoleName(creatorID string) string {
	salt := uuid.New().String()
	sum := sha256.Sum256([]byte(salt + ":" + creatorID))
	return hex.EncodeToString(sum[:])[:config.RoleNameLength]
}

// Create provisions a new room for the request's creator. On any platform
// failure everything provisioned so far is removed again, best effort, and
// the error is wrapped with ErrExternalAPI.
func (s *Service) Create(req models.RoomCreateRequest, names ProvisionNames) (*models.Room, error) {
	if utf8.RuneCountInString(req.Details) > config.DetailsMaxLength {
		return nil, ErrDetailsTooLong
	}
	audience := req.Audience
	switch audience {
	case models.AudienceMale, models.AudienceFemale, models.AudienceAll:
	default:
		audience = models.AudienceAll
	}

	// 1. Reject a second active room up front.
	existing, err := s.Storage.FindRoomByCreator(req.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("%w: find room by creator: %w", ErrPersistence, err)
	}
	if existing != nil {
		return nil, ErrDuplicateActiveRoom
	}

	settings, err := s.Storage.GuildSettings(req.GuildID)
	if err != nil {
		return nil, fmt.Errorf("%w: load guild settings: %w", ErrPersistence, err)
	}

	var undo []func()
	rollback := func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}

	// 2. Container category.
	categoryID, err := s.API.CreateCategory(req.GuildID, names.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: create category: %w", ErrExternalAPI, err)
	}
	undo = append(undo, func() {
		if err := s.API.DeleteCategoryIfEmpty(req.GuildID, categoryID); err != nil {
			log.Printf("ERROR: Rollback failed to remove category %s: %v", categoryID, err)
		}
	})

	// 3. Anonymous role, handed to every blacklisted member still in the
	// guild so the room stays invisible to them from the first moment.
	roleID, err := s.API.CreateHiddenRole(req.GuildID, hiddenRoleName(req.CreatorID))
	if err != nil {
		rollback()
		return nil, fmt.Errorf("%w: create hidden role: %w", ErrExternalAPI, err)
	}
	undo = append(undo, func() {
		if err := s.API.DeleteRole(req.GuildID, roleID); err != nil {
			log.Printf("ERROR: Rollback failed to remove role %s: %v", roleID, err)
		}
	})

	blocked, err := s.Storage.ListBlockedIDs(req.CreatorID)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("%w: load blacklist: %w", ErrPersistence, err)
	}
	blockedMembers := s.API.FilterMembers(req.GuildID, blocked)
	for _, id := range blockedMembers {
		if err := s.API.AssignRole(req.GuildID, id, roleID); err != nil {
			log.Printf("ERROR: Failed to assign hidden role to %s: %v", id, err)
		}
	}

	// 4. Channel pair, created already carrying the open-state rules.
	rules := BuildRules(RuleInput{
		BotID:        s.API.BotUserID(),
		CreatorID:    req.CreatorID,
		Audience:     audience,
		HiddenRoleID: roleID,
		MaleRoleID:   settings.MaleRoleID,
		FemaleRoleID: settings.FemaleRoleID,
		Blacklisted:  blockedMembers,
	})
	textID, err := s.API.CreateTextChannel(req.GuildID, categoryID, names.Text, rules)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("%w: create text channel: %w", ErrExternalAPI, err)
	}
	undo = append(undo, func() {
		if err := s.API.DeleteChannel(textID); err != nil {
			log.Printf("ERROR: Rollback failed to remove text channel %s: %v", textID, err)
		}
	})

	voiceID, err := s.API.CreateVoiceChannel(req.GuildID, categoryID, names.Voice, rules)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("%w: create voice channel: %w", ErrExternalAPI, err)
	}
	undo = append(undo, func() {
		if err := s.API.DeleteChannel(voiceID); err != nil {
			log.Printf("ERROR: Rollback failed to remove voice channel %s: %v", voiceID, err)
		}
	})

	// 5. Registry row. A creation race lost to another event surfaces here
	// as a duplicate, so the provisioned objects are rolled back too.
	room := &models.Room{
		GuildID:        req.GuildID,
		TextChannelID:  textID,
		VoiceChannelID: voiceID,
		CategoryID:     categoryID,
		CreatorID:      req.CreatorID,
		HiddenRoleID:   roleID,
		Audience:       audience,
		Details:        req.Details,
		CreatedAt:      time.Now(),
	}
	if err := s.Storage.CreateRoom(room); err != nil {
		rollback()
		if errors.Is(err, storage.ErrDuplicateRoom) {
			return nil, ErrDuplicateActiveRoom
		}
		return nil, fmt.Errorf("%w: save room: %w", ErrPersistence, err)
	}

	s.Audit.Append(auditlog.ActionRoomCreated, req.CreatorID, "",
		fmt.Sprintf("text:%s voice:%s", textID, voiceID))

	event := models.NewRoomEvent(models.EventRoomCreated, req.GuildID)
	event.RoomID = room.RoomID
	event.ChannelID = voiceID
	event.ActorID = req.CreatorID
	s.publish(event)

	log.Printf("INFO: Room created: creator %s text:%s voice:%s", req.CreatorID, textID, voiceID)
	return room, nil
}

// Delete tears down the room the request's channel belongs to. The request
// may name either side of the pair. Only the creator, a guild administrator
// or a holder of one of the configured admin roles may delete a room.
func (s *Service) Delete(req models.RoomDeleteRequest) (*models.Room, error) {
	room, err := s.Storage.FindRoomByChannel(req.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("%w: find room: %w", ErrPersistence, err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	if !s.mayDelete(req, room) {
		return nil, ErrNotAuthorized
	}

	deleted, err := s.Storage.DeleteRoomByChannel(req.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("%w: delete room: %w", ErrPersistence, err)
	}
	if deleted == nil {
		return nil, ErrRoomNotFound
	}

	s.teardownChannels(req.GuildID, deleted)

	s.Audit.Append(auditlog.ActionRoomDeleted, req.ActorID, deleted.CreatorID,
		fmt.Sprintf("text:%s voice:%s", deleted.TextChannelID, deleted.VoiceChannelID))

	event := models.NewRoomEvent(models.EventRoomDeleted, req.GuildID)
	event.RoomID = deleted.RoomID
	event.ChannelID = req.ChannelID
	event.ActorID = req.ActorID
	s.publish(event)

	return deleted, nil
}

// HandleChannelDeleted reacts to a room channel removed outside /delete-room.
// The registry row, the counterpart channel, the role and the empty category
// are cleaned up and a system entry is journaled.
func (s *Service) HandleChannelDeleted(ev models.ChannelDeleteEvent) error {
	room, err := s.Storage.DeleteRoomByChannel(ev.ChannelID)
	if err != nil {
		return fmt.Errorf("%w: delete room: %w", ErrPersistence, err)
	}
	if room == nil {
		return nil
	}

	other := room.TextChannelID
	if other == ev.ChannelID {
		other = room.VoiceChannelID
	}
	if err := s.API.DeleteChannel(other); err != nil {
		log.Printf("ERROR: Failed to delete counterpart channel %s: %v", other, err)
	}
	if err := s.API.DeleteRole(ev.GuildID, room.HiddenRoleID); err != nil {
		log.Printf("ERROR: Failed to delete role %s: %v", room.HiddenRoleID, err)
	}
	if room.CategoryID != "" {
		if err := s.API.DeleteCategoryIfEmpty(ev.GuildID, room.CategoryID); err != nil {
			log.Printf("ERROR: Failed to delete category %s: %v", room.CategoryID, err)
		}
	}

	s.Audit.System(auditlog.ActionRoomAutoDeleted, room.CreatorID,
		fmt.Sprintf("channel:%s", ev.ChannelID))

	event := models.NewRoomEvent(models.EventRoomDeleted, ev.GuildID)
	event.RoomID = room.RoomID
	event.ChannelID = ev.ChannelID
	s.publish(event)

	log.Printf("INFO: Room %d removed after external deletion of channel %s", room.RoomID, ev.ChannelID)
	return nil
}

// ClearAll tears down every registered room and wipes the registry.
func (s *Service) ClearAll(guildID, actorID string) (int64, error) {
	all, err := s.Storage.ListRooms()
	if err != nil {
		return 0, fmt.Errorf("%w: list rooms: %w", ErrPersistence, err)
	}
	for i := range all {
		s.teardownChannels(guildID, &all[i])
	}

	deleted, err := s.Storage.DeleteAllRooms()
	if err != nil {
		return 0, fmt.Errorf("%w: clear rooms: %w", ErrPersistence, err)
	}
	if deleted > 0 {
		s.Audit.Append(auditlog.ActionRoomsCleared, actorID, "",
			fmt.Sprintf("%d rooms deleted", deleted))

		event := models.NewRoomEvent(models.EventRoomDeleted, guildID)
		event.ActorID = actorID
		event.Details = fmt.Sprintf("cleared %d rooms", deleted)
		s.publish(event)
	}
	return deleted, nil
}

// ListOpen returns the rooms the viewer may browse: audience must match one
// of the viewer's audiences and the creator must not have blacklisted the
// viewer. An empty audience set short-circuits to nothing.
func (s *Service) ListOpen(viewerID string, audiences []string) ([]models.Room, error) {
	if len(audiences) == 0 {
		return nil, nil
	}
	all, err := s.Storage.ListRooms()
	if err != nil {
		return nil, fmt.Errorf("%w: list rooms: %w", ErrPersistence, err)
	}
	blockers, err := s.Storage.ListOwnersBlocking(viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: load blockers: %w", ErrPersistence, err)
	}

	blocked := make(map[string]struct{}, len(blockers))
	for _, id := range blockers {
		blocked[id] = struct{}{}
	}
	allowed := make(map[string]struct{}, len(audiences))
	for _, a := range audiences {
		allowed[a] = struct{}{}
	}

	var visible []models.Room
	for _, room := range all {
		if _, ok := allowed[room.Audience]; !ok {
			continue
		}
		if _, ok := blocked[room.CreatorID]; ok {
			continue
		}
		visible = append(visible, room)
	}
	return visible, nil
}

// ViewerAudiences maps a member's roles to the audiences they may browse.
// Either audience role also unlocks rooms open to all; members holding
// neither role see nothing.
func ViewerAudiences(roleIDs []string, settings *models.GuildSettings) []string {
	var audiences []string
	for _, id := range roleIDs {
		if id == "" {
			continue
		}
		switch id {
		case settings.MaleRoleID:
			audiences = append(audiences, models.AudienceMale)
		case settings.FemaleRoleID:
			audiences = append(audiences, models.AudienceFemale)
		}
	}
	if len(audiences) > 0 {
		audiences = append(audiences, models.AudienceAll)
	}
	return audiences
}

func (s *Service) mayDelete(req models.RoomDeleteRequest, room *models.Room) bool {
	if req.ActorID == room.CreatorID || req.ActorIsAdmin {
		return true
	}
	settings, err := s.Storage.GuildSettings(req.GuildID)
	if err != nil {
		log.Printf("ERROR: Failed to load settings for admin check: %v", err)
		return false
	}
	for _, allowed := range settings.AdminRoleIDs {
		for _, have := range req.ActorRoleIDs {
			if allowed == have {
				return true
			}
		}
	}
	return false
}

// teardownChannels removes the platform objects of a room, best effort.
func (s *Service) teardownChannels(guildID string, room *models.Room) {
	if err := s.API.DeleteChannel(room.TextChannelID); err != nil {
		log.Printf("ERROR: Failed to delete text channel %s: %v", room.TextChannelID, err)
	}
	if err := s.API.DeleteChannel(room.VoiceChannelID); err != nil {
		log.Printf("ERROR: Failed to delete voice channel %s: %v", room.VoiceChannelID, err)
	}
	if err := s.API.DeleteRole(guildID, room.HiddenRoleID); err != nil {
		log.Printf("ERROR: Failed to delete role %s: %v", room.HiddenRoleID, err)
	}
	if room.CategoryID != "" {
		if err := s.API.DeleteCategoryIfEmpty(guildID, room.CategoryID); err != nil {
			log.Printf("ERROR: Failed to delete category %s: %v", room.CategoryID, err)
		}
	}
}

func (s *Service) publish(event models.RoomEvent) {
	if err := s.Storage.PublishEvent(event); err != nil {
		log.Printf("WARNING: Failed to publish %s event: %v", event.Type, err)
	}
}
