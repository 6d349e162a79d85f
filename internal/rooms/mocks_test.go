package rooms_test

import (
	"time"

	"roomgogo/bot/internal/models"
	"roomgogo/bot/internal/rooms"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a comprehensive mock implementation of the storage.Storage
// interface. It uses testify/mock to allow flexible expectation setting in
// tests.
type MockStorage struct {
	mock.Mock
}

// Room operations
func (m *MockStorage) CreateRoom(room *models.Room) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *MockStorage) FindRoomByCreator(creatorID string) (*models.Room, error) {
	args := m.Called(creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockStorage) FindRoomByChannel(channelID string) (*models.Room, error) {
	args := m.Called(channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockStorage) DeleteRoomByChannel(channelID string) (*models.Room, error) {
	args := m.Called(channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockStorage) ListRooms() ([]models.Room, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Room), args.Error(1)
}

func (m *MockStorage) DeleteAllRooms() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// Blacklist operations
func (m *MockStorage) UpsertBlacklistEntry(entry *models.BlacklistEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockStorage) DeleteBlacklistEntry(ownerID, blockedUserID string) (bool, error) {
	args := m.Called(ownerID, blockedUserID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListBlacklistEntries(ownerID string) ([]models.BlacklistEntry, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BlacklistEntry), args.Error(1)
}

func (m *MockStorage) ListBlockedIDs(ownerID string) ([]string, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) ListOwnersBlocking(blockedUserID string) ([]string, error) {
	args := m.Called(blockedUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) AllBlacklistEntries() ([]models.BlacklistEntry, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BlacklistEntry), args.Error(1)
}

// Admin log operations
func (m *MockStorage) AppendAdminLog(entry *models.AdminLog) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockStorage) RecentAdminLogs(limit int) ([]models.AdminLog, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdminLog), args.Error(1)
}

func (m *MockStorage) PurgeAdminLogsBefore(cutoff time.Time) (int64, error) {
	args := m.Called(cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) AllAdminLogs() ([]models.AdminLog, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdminLog), args.Error(1)
}

// Settings operations
func (m *MockStorage) GuildSettings(guildID string) (*models.GuildSettings, error) {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockStorage) SaveGuildSettings(settings *models.GuildSettings) error {
	args := m.Called(settings)
	return args.Error(0)
}

// Event operations
func (m *MockStorage) PublishEvent(event models.RoomEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockChannelAPI is a test double for the rooms.ChannelAPI interface.
type MockChannelAPI struct {
	mock.Mock
}

func (m *MockChannelAPI) BotUserID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockChannelAPI) CreateCategory(guildID, name string) (string, error) {
	args := m.Called(guildID, name)
	return args.String(0), args.Error(1)
}

func (m *MockChannelAPI) CreateTextChannel(guildID, categoryID, name string, rules []rooms.Rule) (string, error) {
	args := m.Called(guildID, categoryID, name, rules)
	return args.String(0), args.Error(1)
}

func (m *MockChannelAPI) CreateVoiceChannel(guildID, categoryID, name string, rules []rooms.Rule) (string, error) {
	args := m.Called(guildID, categoryID, name, rules)
	return args.String(0), args.Error(1)
}

func (m *MockChannelAPI) CreateHiddenRole(guildID, name string) (string, error) {
	args := m.Called(guildID, name)
	return args.String(0), args.Error(1)
}

func (m *MockChannelAPI) AssignRole(guildID, userID, roleID string) error {
	args := m.Called(guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockChannelAPI) ApplyRules(channelID string, rules []rooms.Rule) error {
	args := m.Called(channelID, rules)
	return args.Error(0)
}

func (m *MockChannelAPI) SetVoiceUserLimit(channelID string, limit int) error {
	args := m.Called(channelID, limit)
	return args.Error(0)
}

func (m *MockChannelAPI) VoiceOccupants(guildID, channelID string) ([]rooms.Occupant, error) {
	args := m.Called(guildID, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rooms.Occupant), args.Error(1)
}

func (m *MockChannelAPI) DeleteChannel(channelID string) error {
	args := m.Called(channelID)
	return args.Error(0)
}

func (m *MockChannelAPI) DeleteRole(guildID, roleID string) error {
	args := m.Called(guildID, roleID)
	return args.Error(0)
}

func (m *MockChannelAPI) DeleteCategoryIfEmpty(guildID, categoryID string) error {
	args := m.Called(guildID, categoryID)
	return args.Error(0)
}

func (m *MockChannelAPI) FilterMembers(guildID string, userIDs []string) []string {
	args := m.Called(guildID, userIDs)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}
