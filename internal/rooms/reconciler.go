package rooms

import (
	"fmt"
	"log"

	"roomgogo/bot/internal/models"
	"roomgogo/bot/internal/storage"
)

// Reconciler recomputes a room's visibility and voice cap from live
// occupancy. Every pass rebuilds the full rule list from scratch, so a failed
// or skipped pass is healed by the next occupancy event.
type Reconciler struct {
	Storage storage.Storage
	API     ChannelAPI
}

// NewReconciler creates a new reconciler.
func NewReconciler(s storage.Storage, api ChannelAPI) *Reconciler {
	return &Reconciler{Storage: s, API: api}
}

// Result is what one reconciliation pass computed and what failed while
// applying it. Callers log it and move on.
type Result struct {
	RoomID     uint
	ChannelID  string
	Hidden     bool
	HumanCount int
	BotCount   int
	UserLimit  int
	Errs       []error
}

func (r *Result) fail(err error) {
	r.Errs = append(r.Errs, err)
}

// Log writes the outcome to the process log.
func (r *Result) Log() {
	if r == nil {
		return
	}
	for _, err := range r.Errs {
		log.Printf("ERROR: Reconcile room %d: %v", r.RoomID, err)
	}
	if len(r.Errs) == 0 {
		log.Printf("INFO: Reconciled room %d: hidden=%t humans=%d bots=%d limit=%d",
			r.RoomID, r.Hidden, r.HumanCount, r.BotCount, r.UserLimit)
	}
}

// Reconcile runs one pass for the room owning channelID. It returns nil when
// the channel is not part of a room.
func (r *Reconciler) Reconcile(guildID, channelID string) *Result {
	room, err := r.Storage.FindRoomByChannel(channelID)
	if err != nil {
		return &Result{ChannelID: channelID, Errs: []error{fmt.Errorf("find room: %w", err)}}
	}
	if room == nil {
		return nil
	}

	res := &Result{RoomID: room.RoomID, ChannelID: channelID}

	settings, err := r.Storage.GuildSettings(guildID)
	if err != nil {
		// Without settings the open state carries no audience rules.
		res.fail(fmt.Errorf("load settings: %w", err))
		settings = &models.GuildSettings{}
	}

	occupants, err := r.API.VoiceOccupants(guildID, room.VoiceChannelID)
	if err != nil {
		res.fail(fmt.Errorf("list occupants: %w", err))
		return res
	}

	blocked, err := r.Storage.ListBlockedIDs(room.CreatorID)
	if err != nil {
		// No rules are applied without the trailing blacklist pass.
		res.fail(fmt.Errorf("load blacklist: %w", err))
		return res
	}

	in := RuleInput{
		BotID:        r.API.BotUserID(),
		CreatorID:    room.CreatorID,
		Audience:     room.Audience,
		HiddenRoleID: room.HiddenRoleID,
		MaleRoleID:   settings.MaleRoleID,
		FemaleRoleID: settings.FemaleRoleID,
		Occupants:    occupants,
		Blacklisted:  r.API.FilterMembers(guildID, blocked),
	}
	rules := BuildRules(in)

	res.Hidden = in.Full()
	res.HumanCount = in.HumanCount()
	res.BotCount = in.BotCount()
	res.UserLimit = in.UserLimit()

	if err := r.API.ApplyRules(room.TextChannelID, rules); err != nil {
		res.fail(fmt.Errorf("apply rules to text channel: %w", err))
	}
	if err := r.API.ApplyRules(room.VoiceChannelID, rules); err != nil {
		res.fail(fmt.Errorf("apply rules to voice channel: %w", err))
	}
	if err := r.API.SetVoiceUserLimit(room.VoiceChannelID, res.UserLimit); err != nil {
		res.fail(fmt.Errorf("set voice user limit: %w", err))
	}

	event := models.NewRoomEvent(models.EventRoomReconciled, guildID)
	event.RoomID = room.RoomID
	event.ChannelID = room.VoiceChannelID
	event.Details = fmt.Sprintf("hidden=%t humans=%d bots=%d limit=%d errors=%d",
		res.Hidden, res.HumanCount, res.BotCount, res.UserLimit, len(res.Errs))
	if err := r.Storage.PublishEvent(event); err != nil {
		log.Printf("WARNING: Failed to publish %s event: %v", event.Type, err)
	}

	return res
}
