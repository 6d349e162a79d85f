package discord

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"roomgogo/bot/internal/config"
	"roomgogo/bot/internal/models"
	"roomgogo/bot/internal/rooms"

	"github.com/bwmarrin/discordgo"
)

// embedColor is the accent color for every embed the bot posts.
const embedColor = 0x5865F2

func (s *BotService) handleComponent(i *discordgo.InteractionCreate, customID string) {
	switch {
	case strings.HasPrefix(customID, config.CustomIDCreatePrefix):
		audience := strings.TrimPrefix(customID, config.CustomIDCreatePrefix)
		s.openDetailsModal(i, audience)
	case customID == config.CustomIDRoomList:
		s.handleRoomList(i)
	default:
		log.Printf("WARNING: Unhandled component %q", customID)
	}
}

// openDetailsModal asks for the room description. The audience picked in the
// lobby travels inside the modal's custom ID.
func (s *BotService) openDetailsModal(i *discordgo.InteractionCreate, audience string) {
	lang := s.guildLanguage(i.GuildID)

	err := s.Session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: config.CustomIDDetailsModal + audience,
			Title:    s.Localizer.GetString(lang, "modal_title"),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  config.CustomIDDetailsInput,
							Label:     s.Localizer.GetString(lang, "modal_details_label"),
							Style:     discordgo.TextInputParagraph,
							Value:     s.Localizer.GetString(lang, "modal_details_template"),
							MaxLength: config.DetailsMaxLength,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("ERROR: Failed to open details modal: %v", err)
	}
}

func (s *BotService) handleModalSubmit(i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	if !strings.HasPrefix(data.CustomID, config.CustomIDDetailsModal) {
		log.Printf("WARNING: Unhandled modal %q", data.CustomID)
		return
	}
	audience := strings.TrimPrefix(data.CustomID, config.CustomIDDetailsModal)
	details := modalInputValue(data, config.CustomIDDetailsInput)
	s.createRoom(i, audience, details)
}

// modalInputValue digs the submitted value of one text input out of the
// modal's component tree.
func modalInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

// createRoom runs the provisioning flow for a submitted modal and reports the
// outcome to the creator.
func (s *BotService) createRoom(i *discordgo.InteractionCreate, audience, details string) {
	lang := s.guildLanguage(i.GuildID)
	s.respondDeferred(i)

	name := displayName(i.Member)
	names := rooms.ProvisionNames{
		Category: fmt.Sprintf(s.Localizer.GetString(lang, "name_category"), name),
		Text:     fmt.Sprintf(s.Localizer.GetString(lang, "name_text"), name),
		Voice:    fmt.Sprintf(s.Localizer.GetString(lang, "name_voice"), name),
	}

	room, err := s.Rooms.Create(models.RoomCreateRequest{
		GuildID:   i.GuildID,
		CreatorID: i.Member.User.ID,
		Audience:  audience,
		Details:   details,
	}, names)
	switch {
	case errors.Is(err, rooms.ErrDuplicateActiveRoom):
		s.followUp(i, s.Localizer.GetString(lang, "room_create_duplicate"))
		return
	case errors.Is(err, rooms.ErrDetailsTooLong):
		s.followUp(i, fmt.Sprintf(s.Localizer.GetString(lang, "room_create_too_long"), config.DetailsMaxLength))
		return
	case err != nil:
		s.followUp(i, s.Localizer.GetString(lang, "room_create_failed"))
		return
	}

	s.announceRoom(lang, room, name)
	s.followUp(i, fmt.Sprintf(s.Localizer.GetString(lang, "room_created"), room.VoiceChannelID))
}

// announceRoom posts the new room to the configured announcement channel,
// mentioning the notice role when one is set. Unconfigured guilds skip this
// silently.
func (s *BotService) announceRoom(lang string, room *models.Room, creatorName string) {
	settings, err := s.Storage.GuildSettings(room.GuildID)
	if err != nil || settings.LogChannelID == "" {
		return
	}

	content := ""
	if settings.NoticeRoleID != "" {
		content = "<@&" + settings.NoticeRoleID + ">"
	}
	embed := &discordgo.MessageEmbed{
		Title: s.Localizer.GetString(lang, "announce_title"),
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   s.Localizer.GetString(lang, "announce_creator"),
				Value:  fmt.Sprintf("%s (%s)", creatorName, s.audienceLabel(lang, room.Audience)),
				Inline: true,
			},
			{
				Name:   s.Localizer.GetString(lang, "announce_channel"),
				Value:  "<#" + room.VoiceChannelID + ">",
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: s.Localizer.GetString(lang, "announce_hint"),
		},
	}
	if room.Details != "" {
		embed.Description = room.Details
	}

	_, err = s.Session.ChannelMessageSendComplex(settings.LogChannelID, &discordgo.MessageSend{
		Content: content,
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		log.Printf("ERROR: Failed to announce room %d: %v", room.RoomID, err)
	}
}

// handleRoomList shows the rooms open to the pressing member: matching
// audience, not blacklisted by the creator.
func (s *BotService) handleRoomList(i *discordgo.InteractionCreate) {
	lang := s.guildLanguage(i.GuildID)

	settings, err := s.Storage.GuildSettings(i.GuildID)
	if err != nil {
		s.respond(i, s.Localizer.GetString(lang, "room_list_failed"))
		return
	}
	audiences := rooms.ViewerAudiences(i.Member.Roles, settings)

	visible, err := s.Rooms.ListOpen(i.Member.User.ID, audiences)
	if err != nil {
		s.respond(i, s.Localizer.GetString(lang, "room_list_failed"))
		return
	}
	if len(visible) == 0 {
		s.respond(i, s.Localizer.GetString(lang, "room_list_empty"))
		return
	}

	lines := make([]string, 0, len(visible))
	for _, room := range visible {
		line := fmt.Sprintf("<#%s> (%s)", room.VoiceChannelID, s.audienceLabel(lang, room.Audience))
		if first := firstLine(room.Details); first != "" {
			line += " " + first
		}
		lines = append(lines, line)
	}
	embed := &discordgo.MessageEmbed{
		Title:       s.Localizer.GetString(lang, "room_list_title"),
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

func (s *BotService) audienceLabel(lang, audience string) string {
	switch audience {
	case models.AudienceMale:
		return s.Localizer.GetString(lang, "audience_male")
	case models.AudienceFemale:
		return s.Localizer.GetString(lang, "audience_female")
	default:
		return s.Localizer.GetString(lang, "audience_all")
	}
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return strings.TrimSpace(text)
}
