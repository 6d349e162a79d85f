package discord

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"roomgogo/bot/internal/blacklist"
	"roomgogo/bot/internal/config"
	"roomgogo/bot/internal/models"
	"roomgogo/bot/internal/rooms"

	"github.com/bwmarrin/discordgo"
)

// optionMap indexes a command's options by name.
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func (s *BotService) handleBlacklistAdd(i *discordgo.InteractionCreate) {
	lang := s.guildLanguage(i.GuildID)
	opts := optionMap(i)

	targetID := opts["user"].UserValue(nil).ID
	reason := ""
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	actorID := i.Member.User.ID
	err := s.Blacklist.Block(i.GuildID, actorID, targetID, reason)
	switch {
	case errors.Is(err, blacklist.ErrSelfBlock):
		s.respond(i, s.Localizer.GetString(lang, "bl_self"))
		return
	case err != nil:
		s.respond(i, s.Localizer.GetString(lang, "bl_failed"))
		return
	}

	// An active room has to disappear for the new entry right away, not on
	// the next occupancy change.
	if room, err := s.Storage.FindRoomByCreator(actorID); err == nil && room != nil {
		if len(s.Channels.FilterMembers(i.GuildID, []string{targetID})) > 0 {
			if err := s.Channels.AssignRole(i.GuildID, targetID, room.HiddenRoleID); err != nil {
				log.Printf("ERROR: Failed to assign hidden role to %s: %v", targetID, err)
			}
		}
		s.Reconciler.Reconcile(i.GuildID, room.VoiceChannelID).Log()
	}

	s.respond(i, fmt.Sprintf(s.Localizer.GetString(lang, "bl_added"), targetID))
}

func (s *BotService) handleBlacklistRemove(i *discordgo.InteractionCreate) {
	lang := s.guildLanguage(i.GuildID)
	targetID := optionMap(i)["user"].UserValue(nil).ID
	actorID := i.Member.User.ID

	removed, err := s.Blacklist.Unblock(i.GuildID, actorID, targetID)
	if err != nil {
		s.respond(i, s.Localizer.GetString(lang, "bl_failed"))
		return
	}
	if !removed {
		s.respond(i, s.Localizer.GetString(lang, "bl_not_found"))
		return
	}

	if room, err := s.Storage.FindRoomByCreator(actorID); err == nil && room != nil {
		if err := s.Session.GuildMemberRoleRemove(i.GuildID, targetID, room.HiddenRoleID); err != nil {
			log.Printf("WARNING: Failed to remove hidden role from %s: %v", targetID, err)
		}
		s.Reconciler.Reconcile(i.GuildID, room.VoiceChannelID).Log()
	}

	s.respond(i, fmt.Sprintf(s.Localizer.GetString(lang, "bl_removed"), targetID))
}

// handleBlacklistList sends the caller's blacklist as a direct message so the
// list never shows up in a guild channel. Closed DMs fall back to an
// ephemeral reply.
func (s *BotService) handleBlacklistList(i *discordgo.InteractionCreate) {
	lang := s.guildLanguage(i.GuildID)

	entries, err := s.Blacklist.Entries(i.Member.User.ID)
	if err != nil {
		s.respond(i, s.Localizer.GetString(lang, "bl_failed"))
		return
	}
	if len(entries) == 0 {
		s.respond(i, s.Localizer.GetString(lang, "bl_list_empty"))
		return
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		line := fmt.Sprintf("• <@%s>", entry.BlockedUserID)
		if entry.Reason != "" {
			line += " (" + entry.Reason + ")"
		}
		lines = append(lines, line)
	}
	embed := &discordgo.MessageEmbed{
		Title:       s.Localizer.GetString(lang, "bl_list_title"),
		Description: strings.Join(lines, "\n"),
		Color:       embedColor,
	}

	dm, err := s.Session.UserChannelCreate(i.Member.User.ID)
	if err == nil {
		if _, err = s.Session.ChannelMessageSendEmbed(dm.ID, embed); err == nil {
			s.respond(i, s.Localizer.GetString(lang, "bl_list_sent"))
			return
		}
	}
	log.Printf("WARNING: DM to %s failed, replying in channel: %v", i.Member.User.ID, err)

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	}
	if err := s.Session.InteractionRespond(i.Interaction, resp); err != nil {
		log.Printf("ERROR: Failed to respond to interaction: %v", err)
	}
}

func (s *BotService) handleDeleteRoom(i *discordgo.InteractionCreate) {
	lang := s.guildLanguage(i.GuildID)
	s.respondDeferred(i)

	_, err := s.Rooms.Delete(models.RoomDeleteRequest{
		GuildID:      i.GuildID,
		ChannelID:    i.ChannelID,
		ActorID:      i.Member.User.ID,
		ActorRoleIDs: i.Member.Roles,
		ActorIsAdmin: i.Member.Permissions&discordgo.PermissionAdministrator != 0,
	})
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		s.followUp(i, s.Localizer.GetString(lang, "room_delete_not_room"))
	case errors.Is(err, rooms.ErrNotAuthorized):
		s.followUp(i, s.Localizer.GetString(lang, "room_delete_not_authorized"))
	case err != nil:
		s.followUp(i, s.Localizer.GetString(lang, "room_delete_failed"))
	default:
		// The interaction channel is usually gone by now; the follow-up
		// still reaches the user through the interaction webhook.
		s.followUp(i, s.Localizer.GetString(lang, "room_deleted"))
	}
}

func (s *BotService) handleAdminLogs(i *discordgo.InteractionCreate) {
	lang := s.guildLanguage(i.GuildID)

	limit := 0
	if opt, ok := optionMap(i)["limit"]; ok {
		limit = int(opt.IntValue())
	}

	entries, err := s.Audit.Recent(limit)
	if err != nil {
		s.respond(i, s.Localizer.GetString(lang, "logs_failed"))
		return
	}
	if len(entries) == 0 {
		s.respond(i, s.Localizer.GetString(lang, "logs_empty"))
		return
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		actor := "system"
		if entry.ActorID != nil {
			actor = "<@" + *entry.ActorID + ">"
		}
		line := fmt.Sprintf("`%s` **%s** %s", entry.CreatedAt.Format("2006-01-02 15:04"), entry.Action, actor)
		if entry.TargetID != nil {
			line += " → <@" + *entry.TargetID + ">"
		}
		if entry.Details != "" {
			line += " " + entry.Details
		}
		lines = append(lines, line)
	}

	embed := &discordgo.MessageEmbed{
		Title:       s.Localizer.GetString(lang, "logs_title"),
		Description: strings.Join(lines, "\n"),
		Color:       embedColor,
	}
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	}
	if err := s.Session.InteractionRespond(i.Interaction, resp); err != nil {
		log.Printf("ERROR: Failed to respond to interaction: %v", err)
	}
}

func (s *BotService) handleClearRooms(i *discordgo.InteractionCreate) {
	lang := s.guildLanguage(i.GuildID)
	s.respondDeferred(i)

	deleted, err := s.Rooms.ClearAll(i.GuildID, i.Member.User.ID)
	if err != nil {
		s.followUp(i, s.Localizer.GetString(lang, "rooms_clear_failed"))
		return
	}
	s.followUp(i, fmt.Sprintf(s.Localizer.GetString(lang, "rooms_cleared"), deleted))
}

func (s *BotService) handleSetupRoles(i *discordgo.InteractionCreate) {
	lang := s.guildLanguage(i.GuildID)

	settings, err := s.Storage.GuildSettings(i.GuildID)
	if err != nil {
		s.respond(i, s.Localizer.GetString(lang, "setup_failed"))
		return
	}

	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "male-role":
			settings.MaleRoleID = opt.RoleValue(nil, "").ID
		case "female-role":
			settings.FemaleRoleID = opt.RoleValue(nil, "").ID
		case "notice-role":
			settings.NoticeRoleID = opt.RoleValue(nil, "").ID
		case "admin-role":
			roleID := opt.RoleValue(nil, "").ID
			if !contains(settings.AdminRoleIDs, roleID) {
				settings.AdminRoleIDs = append(settings.AdminRoleIDs, roleID)
			}
		case "log-channel":
			settings.LogChannelID = opt.ChannelValue(nil).ID
		case "backup-channel":
			settings.BackupChannelID = opt.ChannelValue(nil).ID
		case "language":
			settings.Language = opt.StringValue()
		}
	}

	if err := s.Storage.SaveGuildSettings(settings); err != nil {
		s.respond(i, s.Localizer.GetString(lang, "setup_failed"))
		return
	}
	// Reload in the language that may just have changed.
	lang = s.guildLanguage(i.GuildID)
	s.respond(i, s.Localizer.GetString(lang, "setup_roles_saved"))
}

func (s *BotService) handleSetupLobby(i *discordgo.InteractionCreate) {
	lang := s.guildLanguage(i.GuildID)

	embed := &discordgo.MessageEmbed{
		Title:       s.Localizer.GetString(lang, "lobby_title"),
		Description: s.Localizer.GetString(lang, "lobby_body"),
		Color:       embedColor,
	}
	buttons := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    s.Localizer.GetString(lang, "btn_create_male"),
				Style:    discordgo.PrimaryButton,
				CustomID: config.CustomIDCreatePrefix + models.AudienceMale,
			},
			discordgo.Button{
				Label:    s.Localizer.GetString(lang, "btn_create_female"),
				Style:    discordgo.DangerButton,
				CustomID: config.CustomIDCreatePrefix + models.AudienceFemale,
			},
			discordgo.Button{
				Label:    s.Localizer.GetString(lang, "btn_create_all"),
				Style:    discordgo.SecondaryButton,
				CustomID: config.CustomIDCreatePrefix + models.AudienceAll,
			},
		},
	}

	_, err := s.Session.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{buttons},
	})
	if err != nil {
		log.Printf("ERROR: Failed to post lobby: %v", err)
		s.respond(i, s.Localizer.GetString(lang, "setup_failed"))
		return
	}
	s.respond(i, s.Localizer.GetString(lang, "setup_posted"))
}

func (s *BotService) handleSetupRoomList(i *discordgo.InteractionCreate) {
	lang := s.guildLanguage(i.GuildID)

	row := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    s.Localizer.GetString(lang, "btn_room_list"),
				Style:    discordgo.SecondaryButton,
				CustomID: config.CustomIDRoomList,
			},
		},
	}
	_, err := s.Session.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Content:    s.Localizer.GetString(lang, "room_list_prompt"),
		Components: []discordgo.MessageComponent{row},
	})
	if err != nil {
		log.Printf("ERROR: Failed to post room list button: %v", err)
		s.respond(i, s.Localizer.GetString(lang, "setup_failed"))
		return
	}
	s.respond(i, s.Localizer.GetString(lang, "setup_posted"))
}

func (s *BotService) handleSetupBlacklistHelp(i *discordgo.InteractionCreate) {
	lang := s.guildLanguage(i.GuildID)

	embed := &discordgo.MessageEmbed{
		Title:       s.Localizer.GetString(lang, "help_title"),
		Description: s.Localizer.GetString(lang, "help_body"),
		Color:       embedColor,
	}
	if _, err := s.Session.ChannelMessageSendEmbed(i.ChannelID, embed); err != nil {
		log.Printf("ERROR: Failed to post blacklist help: %v", err)
		s.respond(i, s.Localizer.GetString(lang, "setup_failed"))
		return
	}
	s.respond(i, s.Localizer.GetString(lang, "setup_posted"))
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
