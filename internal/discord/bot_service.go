// Package discord handles the integration with the Discord gateway.
// It is responsible for receiving guild events, routing slash commands and
// component interactions, and executing the channel operations the room
// services decide on.
package discord

import (
	"fmt"
	"log"

	"roomgogo/bot/internal/auditlog"
	"roomgogo/bot/internal/blacklist"
	"roomgogo/bot/internal/localization"
	"roomgogo/bot/internal/models"
	"roomgogo/bot/internal/rooms"
	"roomgogo/bot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

// BotService is responsible for receiving Discord gateway events and routing
// them to the room, blacklist and audit services.
type BotService struct {
	Session    *discordgo.Session
	Channels   *ChannelService
	Rooms      *rooms.Service
	Reconciler *rooms.Reconciler
	Blacklist  *blacklist.Service
	Audit      *auditlog.Service
	Storage    storage.Storage
	Localizer  *localization.Localizer

	// GuildID scopes slash command registration; empty registers globally.
	GuildID     string
	DefaultLang string
}

// NewBotService creates a new BotService instance.
func NewBotService(token, guildID, localesPath, defaultLanguage string, s storage.Storage) (*BotService, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates

	localizer, err := localization.NewLocalizer(localesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create localizer: %w", err)
	}

	audit := auditlog.NewService(s)
	channels := NewChannelService(session)

	return &BotService{
		Session:     session,
		Channels:    channels,
		Rooms:       rooms.NewService(s, channels, audit),
		Reconciler:  rooms.NewReconciler(s, channels),
		Blacklist:   blacklist.NewService(s, audit),
		Audit:       audit,
		Storage:     s,
		Localizer:   localizer,
		GuildID:     guildID,
		DefaultLang: defaultLanguage,
	}, nil
}

// Run opens the gateway connection and registers the slash commands. Event
// handling continues on the session's own goroutines until Stop.
func (s *BotService) Run() error {
	s.Session.AddHandler(s.onReady)
	s.Session.AddHandler(s.onInteractionCreate)
	s.Session.AddHandler(s.onVoiceStateUpdate)
	s.Session.AddHandler(s.onChannelDelete)

	if err := s.Session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", err)
	}
	log.Printf("✅ Authorized on account %s", s.Session.State.User.Username)

	if err := s.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (s *BotService) Stop() {
	if err := s.Session.Close(); err != nil {
		log.Printf("ERROR: Failed to close Discord session: %v", err)
	}
}

func (s *BotService) onReady(session *discordgo.Session, e *discordgo.Ready) {
	log.Printf("INFO: Gateway ready, serving %d guild(s).", len(e.Guilds))
}

// registerCommands overwrites the command set so removed commands disappear
// on restart.
func (s *BotService) registerCommands() error {
	var adminPermission int64 = discordgo.PermissionAdministrator

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "bl-add",
			Description: "Add a user to your blacklist",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to block",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Optional note, visible only to you",
				},
			},
		},
		{
			Name:        "bl-remove",
			Description: "Remove a user from your blacklist",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to unblock",
					Required:    true,
				},
			},
		},
		{
			Name:        "bl-list",
			Description: "Show your blacklist via direct message",
		},
		{
			Name:        "delete-room",
			Description: "Delete the room this channel belongs to",
		},
		{
			Name:                     "admin-logs",
			Description:              "Show the newest moderation log entries",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "Number of entries to show",
				},
			},
		},
		{
			Name:                     "clear-rooms",
			Description:              "Delete every active room",
			DefaultMemberPermissions: &adminPermission,
		},
		{
			Name:                     "setup-lobby",
			Description:              "Post the room creation lobby in this channel",
			DefaultMemberPermissions: &adminPermission,
		},
		{
			Name:                     "setup-room-list",
			Description:              "Post the room list button in this channel",
			DefaultMemberPermissions: &adminPermission,
		},
		{
			Name:                     "setup-blacklist-help",
			Description:              "Post the blacklist usage guide in this channel",
			DefaultMemberPermissions: &adminPermission,
		},
		{
			Name:                     "setup-roles",
			Description:              "Configure guild roles and channels used by the bot",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "male-role",
					Description: "Role granted to male members",
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "female-role",
					Description: "Role granted to female members",
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "notice-role",
					Description: "Role mentioned in room announcements",
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "admin-role",
					Description: "Extra role allowed to delete any room",
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "log-channel",
					Description: "Channel receiving room announcements",
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "backup-channel",
					Description: "Channel receiving daily backup archives",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "language",
					Description: "Bot language for this guild",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "English", Value: "en"},
						{Name: "日本語", Value: "ja"},
					},
				},
			},
		},
	}

	_, err := s.Session.ApplicationCommandBulkOverwrite(s.Session.State.User.ID, s.GuildID, commands)
	if err != nil {
		return err
	}
	log.Printf("INFO: Registered %d slash commands.", len(commands))
	return nil
}

func (s *BotService) onInteractionCreate(session *discordgo.Session, i *discordgo.InteractionCreate) {
	// DM interactions carry no member; everything the bot offers is guild-bound.
	if i.Member == nil || i.Member.User == nil {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		s.Audit.Append(auditlog.ActionCommandRun, i.Member.User.ID, "", "/"+data.Name)

		switch data.Name {
		case "bl-add":
			s.handleBlacklistAdd(i)
		case "bl-remove":
			s.handleBlacklistRemove(i)
		case "bl-list":
			s.handleBlacklistList(i)
		case "delete-room":
			s.handleDeleteRoom(i)
		case "admin-logs":
			s.handleAdminLogs(i)
		case "clear-rooms":
			s.handleClearRooms(i)
		case "setup-lobby":
			s.handleSetupLobby(i)
		case "setup-room-list":
			s.handleSetupRoomList(i)
		case "setup-blacklist-help":
			s.handleSetupBlacklistHelp(i)
		case "setup-roles":
			s.handleSetupRoles(i)
		default:
			log.Printf("WARNING: Unhandled command %q", data.Name)
		}

	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		s.Audit.Append(auditlog.ActionButtonPressed, i.Member.User.ID, "", data.CustomID)
		s.handleComponent(i, data.CustomID)

	case discordgo.InteractionModalSubmit:
		s.handleModalSubmit(i)
	}
}

// onVoiceStateUpdate reconciles both sides of a move. Mute and deafen toggles
// arrive as updates too; those leave the channel unchanged and are skipped.
func (s *BotService) onVoiceStateUpdate(session *discordgo.Session, e *discordgo.VoiceStateUpdate) {
	joined := e.ChannelID
	left := ""
	if e.BeforeUpdate != nil {
		left = e.BeforeUpdate.ChannelID
	}
	if joined == left {
		return
	}

	ev := models.VoiceStateEvent{
		GuildID:       e.GuildID,
		UserID:        e.UserID,
		JoinedChannel: joined,
		LeftChannel:   left,
	}
	for _, channelID := range []string{ev.LeftChannel, ev.JoinedChannel} {
		if channelID == "" {
			continue
		}
		s.Reconciler.Reconcile(ev.GuildID, channelID).Log()
	}
}

func (s *BotService) onChannelDelete(session *discordgo.Session, e *discordgo.ChannelDelete) {
	ev := models.ChannelDeleteEvent{GuildID: e.GuildID, ChannelID: e.ID}
	if err := s.Rooms.HandleChannelDeleted(ev); err != nil {
		log.Printf("ERROR: Cascade for deleted channel %s: %v", e.ID, err)
	}
}

// guildLanguage picks the reply language for a guild, falling back to the
// process default.
func (s *BotService) guildLanguage(guildID string) string {
	settings, err := s.Storage.GuildSettings(guildID)
	if err != nil || settings.Language == "" {
		return s.DefaultLang
	}
	return settings.Language
}

// respond sends an ephemeral reply to an interaction.
func (s *BotService) respond(i *discordgo.InteractionCreate, content string) {
	err := s.Session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("ERROR: Failed to respond to interaction: %v", err)
	}
}

// respondDeferred acknowledges an interaction whose work takes longer than
// the three second interaction deadline.
func (s *BotService) respondDeferred(i *discordgo.InteractionCreate) {
	err := s.Session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("ERROR: Failed to defer interaction: %v", err)
	}
}

// followUp completes a deferred interaction.
func (s *BotService) followUp(i *discordgo.InteractionCreate, content string) {
	_, err := s.Session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Printf("ERROR: Failed to send follow-up: %v", err)
	}
}

// displayName returns the name members see in the guild.
func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
