package rooms

// Occupant is one member currently connected to a room's voice channel.
type Occupant struct {
	UserID string
	Bot    bool
}

// ChannelAPI is the slice of the chat platform the room services depend on.
// The production implementation lives in internal/discord; tests substitute
// a mock.
type ChannelAPI interface {
	// BotUserID returns the bot's own user ID for self-allow rules.
	BotUserID() string

	CreateCategory(guildID, name string) (string, error)
	CreateTextChannel(guildID, categoryID, name string, rules []Rule) (string, error)
	CreateVoiceChannel(guildID, categoryID, name string, rules []Rule) (string, error)
	CreateHiddenRole(guildID, name string) (string, error)
	AssignRole(guildID, userID, roleID string) error

	ApplyRules(channelID string, rules []Rule) error
	SetVoiceUserLimit(channelID string, limit int) error
	VoiceOccupants(guildID, channelID string) ([]Occupant, error)

	DeleteChannel(channelID string) error
	DeleteRole(guildID, roleID string) error
	// DeleteCategoryIfEmpty removes the category when no channel is left
	// under it.
	DeleteCategoryIfEmpty(guildID, categoryID string) error

	// FilterMembers narrows userIDs down to current guild members.
	// Lookup failures count as "not a member"; the result is best-effort.
	FilterMembers(guildID string, userIDs []string) []string
}

// ProvisionNames carries the display names for the category and channel pair.
// The command layer localizes them before calling Create.
type ProvisionNames struct {
	Category string
	Text     string
	Voice    string
}
