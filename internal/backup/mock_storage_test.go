package backup_test

import (
	"time"

	"roomgogo/bot/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

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

func (m *MockStorage) PublishEvent(event models.RoomEvent) error {
	args := m.Called(event)
	return args.Error(0)
}
