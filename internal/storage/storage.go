package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"roomgogo/bot/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateRoom signals that the rooms.creator_id unique index rejected an
// insert. Room creation maps it to its own error taxonomy.
var ErrDuplicateRoom = errors.New("creator already has an active room")

// eventsChannel is the Redis Pub/Sub channel carrying the admin feed.
const eventsChannel = "room_events"

type Storage interface {
	CreateRoom(room *models.Room) error
	FindRoomByCreator(creatorID string) (*models.Room, error)
	FindRoomByChannel(channelID string) (*models.Room, error)
	DeleteRoomByChannel(channelID string) (*models.Room, error)
	ListRooms() ([]models.Room, error)
	DeleteAllRooms() (int64, error)

	UpsertBlacklistEntry(entry *models.BlacklistEntry) error
	DeleteBlacklistEntry(ownerID, blockedUserID string) (bool, error)
	ListBlacklistEntries(ownerID string) ([]models.BlacklistEntry, error)
	ListBlockedIDs(ownerID string) ([]string, error)
	ListOwnersBlocking(blockedUserID string) ([]string, error)
	AllBlacklistEntries() ([]models.BlacklistEntry, error)

	AppendAdminLog(entry *models.AdminLog) error
	RecentAdminLogs(limit int) ([]models.AdminLog, error)
	PurgeAdminLogsBefore(cutoff time.Time) (int64, error)
	AllAdminLogs() ([]models.AdminLog, error)

	GuildSettings(guildID string) (*models.GuildSettings, error)
	SaveGuildSettings(settings *models.GuildSettings) error

	PublishEvent(event models.RoomEvent) error
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// CreateRoom вставляє кімнату в PostgreSQL. Унікальний індекс на creator_id
// гарантує не більше однієї активної кімнати на користувача.
func (s *Service) CreateRoom(room *models.Room) error {
	if err := s.DB.Create(room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateRoom
		}
		log.Printf("ERROR: Failed to create room for creator %s: %v", room.CreatorID, err)
		return err
	}
	return nil
}

// FindRoomByCreator шукає активну кімнату користувача.
// Повертає nil без помилки, якщо кімнати немає.
func (s *Service) FindRoomByCreator(creatorID string) (*models.Room, error) {
	var room models.Room
	err := s.DB.Where("creator_id = ?", creatorID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to find room for creator %s: %v", creatorID, err)
		return nil, err
	}
	return &room, nil
}

// FindRoomByChannel шукає кімнату, якій належить канал,
// текстовий або голосовий.
func (s *Service) FindRoomByChannel(channelID string) (*models.Room, error) {
	var room models.Room
	err := s.DB.Where("text_channel_id = ? OR voice_channel_id = ?", channelID, channelID).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to find room by channel %s: %v", channelID, err)
		return nil, err
	}
	return &room, nil
}

// DeleteRoomByChannel видаляє кімнату за будь-яким з її каналів і повертає
// видалений запис, щоб викликач міг прибрати другий канал та роль.
func (s *Service) DeleteRoomByChannel(channelID string) (*models.Room, error) {
	var room models.Room
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("text_channel_id = ? OR voice_channel_id = ?", channelID, channelID).
			First(&room).Error
		if err != nil {
			return err
		}
		return tx.Delete(&models.Room{}, room.RoomID).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to delete room by channel %s: %v", channelID, err)
		return nil, err
	}
	return &room, nil
}

// ListRooms повертає всі активні кімнати, найновіші першими.
func (s *Service) ListRooms() ([]models.Room, error) {
	var rooms []models.Room
	if err := s.DB.Order("created_at desc").Find(&rooms).Error; err != nil {
		log.Printf("ERROR: Failed to list rooms: %v", err)
		return nil, err
	}
	return rooms, nil
}

// DeleteAllRooms очищає реєстр кімнат і повертає кількість видалених рядків.
func (s *Service) DeleteAllRooms() (int64, error) {
	result := s.DB.Where("1 = 1").Delete(&models.Room{})
	if result.Error != nil {
		log.Printf("ERROR: Failed to clear rooms: %v", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// UpsertBlacklistEntry додає пару (owner, blocked) або оновлює Reason,
// якщо пара вже існує.
func (s *Service) UpsertBlacklistEntry(entry *models.BlacklistEntry) error {
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "blocked_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		log.Printf("ERROR: Failed to upsert blacklist entry %s -> %s: %v",
			entry.OwnerID, entry.BlockedUserID, err)
	}
	return err
}

// DeleteBlacklistEntry видаляє пару і повідомляє, чи існував запис.
func (s *Service) DeleteBlacklistEntry(ownerID, blockedUserID string) (bool, error) {
	result := s.DB.Where("owner_id = ? AND blocked_user_id = ?", ownerID, blockedUserID).
		Delete(&models.BlacklistEntry{})
	if result.Error != nil {
		log.Printf("ERROR: Failed to delete blacklist entry %s -> %s: %v",
			ownerID, blockedUserID, result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListBlacklistEntries повертає повні записи чорного списку користувача,
// найновіші першими.
func (s *Service) ListBlacklistEntries(ownerID string) ([]models.BlacklistEntry, error) {
	var entries []models.BlacklistEntry
	err := s.DB.Where("owner_id = ?", ownerID).Order("created_at desc").Find(&entries).Error
	if err != nil {
		log.Printf("ERROR: Failed to list blacklist entries for %s: %v", ownerID, err)
		return nil, err
	}
	return entries, nil
}

// ListBlockedIDs повертає лише ідентифікатори заблокованих користувачів.
func (s *Service) ListBlockedIDs(ownerID string) ([]string, error) {
	var ids []string
	err := s.DB.Model(&models.BlacklistEntry{}).
		Where("owner_id = ?", ownerID).
		Pluck("blocked_user_id", &ids).Error
	if err != nil {
		log.Printf("ERROR: Failed to list blocked IDs for %s: %v", ownerID, err)
		return nil, err
	}
	return ids, nil
}

// ListOwnersBlocking повертає власників, які заблокували даного користувача.
// Використовується фільтром списку кімнат.
func (s *Service) ListOwnersBlocking(blockedUserID string) ([]string, error) {
	var ids []string
	err := s.DB.Model(&models.BlacklistEntry{}).
		Where("blocked_user_id = ?", blockedUserID).
		Pluck("owner_id", &ids).Error
	if err != nil {
		log.Printf("ERROR: Failed to list owners blocking %s: %v", blockedUserID, err)
		return nil, err
	}
	return ids, nil
}

func (s *Service) AllBlacklistEntries() ([]models.BlacklistEntry, error) {
	var entries []models.BlacklistEntry
	if err := s.DB.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// AppendAdminLog додає рядок до журналу адміністратора.
func (s *Service) AppendAdminLog(entry *models.AdminLog) error {
	if err := s.DB.Create(entry).Error; err != nil {
		log.Printf("ERROR: Failed to append admin log %q: %v", entry.Action, err)
		return err
	}
	return nil
}

// RecentAdminLogs повертає останні записи журналу, найновіші першими.
func (s *Service) RecentAdminLogs(limit int) ([]models.AdminLog, error) {
	var logs []models.AdminLog
	err := s.DB.Order("created_at desc").Limit(limit).Find(&logs).Error
	if err != nil {
		log.Printf("ERROR: Failed to read admin logs: %v", err)
		return nil, err
	}
	return logs, nil
}

// PurgeAdminLogsBefore видаляє записи журналу, старші за cutoff,
// і повертає кількість видалених рядків.
func (s *Service) PurgeAdminLogsBefore(cutoff time.Time) (int64, error) {
	result := s.DB.Where("created_at < ?", cutoff).Delete(&models.AdminLog{})
	if result.Error != nil {
		log.Printf("ERROR: Failed to purge admin logs before %s: %v", cutoff, result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (s *Service) AllAdminLogs() ([]models.AdminLog, error) {
	var logs []models.AdminLog
	if err := s.DB.Order("created_at asc").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// GuildSettings повертає налаштування гільдії, створюючи порожній запис
// при першому зверненні.
func (s *Service) GuildSettings(guildID string) (*models.GuildSettings, error) {
	var settings models.GuildSettings
	defaults := models.GuildSettings{GuildID: guildID}

	result := s.DB.Where("guild_id = ?", guildID).FirstOrCreate(&settings, defaults)
	if result.Error != nil {
		log.Printf("ERROR: Failed to load settings for guild %s: %v", guildID, result.Error)
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("INFO: Created default settings row for guild %s.", guildID)
	}
	return &settings, nil
}

func (s *Service) SaveGuildSettings(settings *models.GuildSettings) error {
	return s.DB.Save(settings).Error
}

// PublishEvent публікує подію адмін-стрічки в Redis Pub/Sub.
func (s *Service) PublishEvent(event models.RoomEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.Redis.Publish(s.Ctx, eventsChannel, string(eventBytes)).Err(); err != nil {
		return err
	}

	return nil
}

// SubscribeEvents підписується на канал подій адмін-стрічки.
func (s *Service) SubscribeEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, eventsChannel)
}
