package discord

import (
	"roomgogo/bot/internal/rooms"

	"github.com/bwmarrin/discordgo"
)

// rulePermissions is the bit set every room rule grants or withholds. Text
// and voice channels share one overwrite shape; Discord ignores the bits that
// do not apply to the channel type.
const rulePermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionVoiceConnect |
	discordgo.PermissionSendMessages

// ChannelService executes room channel operations against the Discord API.
// It implements rooms.ChannelAPI.
type ChannelService struct {
	Session *discordgo.Session
}

// NewChannelService creates a new channel service.
func NewChannelService(session *discordgo.Session) *ChannelService {
	return &ChannelService{Session: session}
}

// BotUserID returns the bot's own user ID, or "" before the gateway session
// is ready.
func (c *ChannelService) BotUserID() string {
	if c.Session.State == nil || c.Session.State.User == nil {
		return ""
	}
	return c.Session.State.User.ID
}

// overwrites converts an ordered rule list into Discord permission
// overwrites. Discord keeps a single overwrite per principal, so the list is
// flattened first; later rules have already won by then.
func overwrites(guildID string, ruleList []rooms.Rule) []*discordgo.PermissionOverwrite {
	flat := rooms.Flatten(ruleList)
	out := make([]*discordgo.PermissionOverwrite, 0, len(flat))
	for _, r := range flat {
		ow := &discordgo.PermissionOverwrite{Type: discordgo.PermissionOverwriteTypeMember}
		switch r.Principal.Kind {
		case rooms.PrincipalEveryone:
			// The everyone role shares its ID with the guild.
			ow.ID = guildID
			ow.Type = discordgo.PermissionOverwriteTypeRole
		case rooms.PrincipalRole:
			ow.ID = r.Principal.ID
			ow.Type = discordgo.PermissionOverwriteTypeRole
		case rooms.PrincipalMember:
			ow.ID = r.Principal.ID
		}
		if r.Access == rooms.Allow {
			ow.Allow = rulePermissions
		} else {
			ow.Deny = rulePermissions
		}
		out = append(out, ow)
	}
	return out
}

func (c *ChannelService) CreateCategory(guildID, name string) (string, error) {
	ch, err := c.Session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name: name,
		Type: discordgo.ChannelTypeGuildCategory,
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (c *ChannelService) CreateTextChannel(guildID, categoryID, name string, ruleList []rooms.Rule) (string, error) {
	ch, err := c.Session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             categoryID,
		PermissionOverwrites: overwrites(guildID, ruleList),
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

// CreateVoiceChannel creates the voice side of the pair. No user limit is set
// here; the first reconciliation pass computes one from occupancy.
func (c *ChannelService) CreateVoiceChannel(guildID, categoryID, name string, ruleList []rooms.Rule) (string, error) {
	ch, err := c.Session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildVoice,
		ParentID:             categoryID,
		PermissionOverwrites: overwrites(guildID, ruleList),
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (c *ChannelService) CreateHiddenRole(guildID, name string) (string, error) {
	role, err := c.Session.GuildRoleCreate(guildID, &discordgo.RoleParams{Name: name})
	if err != nil {
		return "", err
	}
	return role.ID, nil
}

func (c *ChannelService) AssignRole(guildID, userID, roleID string) error {
	return c.Session.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (c *ChannelService) ApplyRules(channelID string, ruleList []rooms.Rule) error {
	ch, err := c.channel(channelID)
	if err != nil {
		return err
	}
	_, err = c.Session.ChannelEditComplex(channelID, &discordgo.ChannelEdit{
		PermissionOverwrites: overwrites(ch.GuildID, ruleList),
	})
	return err
}

func (c *ChannelService) SetVoiceUserLimit(channelID string, limit int) error {
	_, err := c.Session.ChannelEditComplex(channelID, &discordgo.ChannelEdit{
		UserLimit: limit,
	})
	return err
}

// VoiceOccupants reads the gateway state for everyone connected to the given
// voice channel.
func (c *ChannelService) VoiceOccupants(guildID, channelID string) ([]rooms.Occupant, error) {
	guild, err := c.Session.State.Guild(guildID)
	if err != nil {
		return nil, err
	}
	var occupants []rooms.Occupant
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		occupants = append(occupants, rooms.Occupant{
			UserID: vs.UserID,
			Bot:    c.isBot(guildID, vs.UserID),
		})
	}
	return occupants, nil
}

func (c *ChannelService) DeleteChannel(channelID string) error {
	_, err := c.Session.ChannelDelete(channelID)
	return err
}

func (c *ChannelService) DeleteRole(guildID, roleID string) error {
	return c.Session.GuildRoleDelete(guildID, roleID)
}

// DeleteCategoryIfEmpty removes the category unless some other channel still
// lives under it.
func (c *ChannelService) DeleteCategoryIfEmpty(guildID, categoryID string) error {
	channels, err := c.Session.GuildChannels(guildID)
	if err != nil {
		return err
	}
	for _, ch := range channels {
		if ch.ParentID == categoryID {
			return nil
		}
	}
	_, err = c.Session.ChannelDelete(categoryID)
	return err
}

// FilterMembers narrows userIDs down to current guild members. Users who left
// the guild, or whose lookup fails, are dropped.
func (c *ChannelService) FilterMembers(guildID string, userIDs []string) []string {
	var members []string
	for _, id := range userIDs {
		if _, err := c.member(guildID, id); err != nil {
			continue
		}
		members = append(members, id)
	}
	return members
}

// member resolves a guild member from the state cache, falling back to the
// REST API on a miss.
func (c *ChannelService) member(guildID, userID string) (*discordgo.Member, error) {
	member, err := c.Session.State.Member(guildID, userID)
	if err == nil {
		return member, nil
	}
	return c.Session.GuildMember(guildID, userID)
}

func (c *ChannelService) isBot(guildID, userID string) bool {
	member, err := c.member(guildID, userID)
	if err != nil || member.User == nil {
		return false
	}
	return member.User.Bot
}

func (c *ChannelService) channel(channelID string) (*discordgo.Channel, error) {
	ch, err := c.Session.State.Channel(channelID)
	if err == nil {
		return ch, nil
	}
	return c.Session.Channel(channelID)
}
