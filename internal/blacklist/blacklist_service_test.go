package blacklist_test

import (
	"errors"
	"testing"

	"roomgogo/bot/internal/auditlog"
	"roomgogo/bot/internal/blacklist"
	"roomgogo/bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestService() (*MockStorage, *blacklist.Service) {
	storageMock := new(MockStorage)
	return storageMock, blacklist.NewService(storageMock, auditlog.NewService(storageMock))
}

// TestBlockWritesEntryAndJournal verifies the happy path: the pair is
// upserted, the journal row names both parties, and a feed event goes out.
func TestBlockWritesEntryAndJournal(t *testing.T) {
	// Arrange
	storageMock, service := newTestService()

	var saved *models.BlacklistEntry
	storageMock.On("UpsertBlacklistEntry", mock.AnythingOfType("*models.BlacklistEntry")).
		Run(func(args mock.Arguments) { saved = args.Get(0).(*models.BlacklistEntry) }).
		Return(nil)

	var logged *models.AdminLog
	storageMock.On("AppendAdminLog", mock.AnythingOfType("*models.AdminLog")).
		Run(func(args mock.Arguments) { logged = args.Get(0).(*models.AdminLog) }).
		Return(nil)
	storageMock.On("PublishEvent", mock.AnythingOfType("models.RoomEvent")).Return(nil)

	// Act
	err := service.Block("guild", "owner", "other", "spam")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "owner", saved.OwnerID)
	assert.Equal(t, "other", saved.BlockedUserID)
	assert.Equal(t, "spam", saved.Reason)
	assert.False(t, saved.CreatedAt.IsZero(), "Timestamps must be set before the upsert")

	assert.Equal(t, auditlog.ActionBlacklistAdd, logged.Action)
	assert.Equal(t, "owner", *logged.ActorID)
	assert.Equal(t, "other", *logged.TargetID)
	storageMock.AssertExpectations(t)
}

// TestBlockRejectsSelf verifies that blocking yourself never reaches storage.
func TestBlockRejectsSelf(t *testing.T) {
	// Arrange
	storageMock, service := newTestService()

	// Act
	err := service.Block("guild", "owner", "owner", "")

	// Assert
	assert.ErrorIs(t, err, blacklist.ErrSelfBlock)
	storageMock.AssertNotCalled(t, "UpsertBlacklistEntry", mock.Anything)
	storageMock.AssertNotCalled(t, "AppendAdminLog", mock.Anything)
}

// TestBlockPropagatesStorageFailure verifies that a failed upsert surfaces to
// the caller without a journal row.
func TestBlockPropagatesStorageFailure(t *testing.T) {
	// Arrange
	storageMock, service := newTestService()
	storageMock.On("UpsertBlacklistEntry", mock.Anything).Return(errors.New("db down"))

	// Act
	err := service.Block("guild", "owner", "other", "")

	// Assert
	assert.Error(t, err)
	storageMock.AssertNotCalled(t, "AppendAdminLog", mock.Anything)
}

// TestUnblockRemovesEntry verifies removal plus its journal entry.
func TestUnblockRemovesEntry(t *testing.T) {
	// Arrange
	storageMock, service := newTestService()
	storageMock.On("DeleteBlacklistEntry", "owner", "other").Return(true, nil)
	storageMock.On("AppendAdminLog", mock.Anything).Return(nil)
	storageMock.On("PublishEvent", mock.Anything).Return(nil)

	// Act
	removed, err := service.Unblock("guild", "owner", "other")

	// Assert
	assert.NoError(t, err)
	assert.True(t, removed)
	storageMock.AssertExpectations(t)
}

// TestUnblockMissingEntry verifies that removing a pair that was never
// blocked reports false and journals nothing.
func TestUnblockMissingEntry(t *testing.T) {
	// Arrange
	storageMock, service := newTestService()
	storageMock.On("DeleteBlacklistEntry", "owner", "stranger").Return(false, nil)

	// Act
	removed, err := service.Unblock("guild", "owner", "stranger")

	// Assert
	assert.NoError(t, err)
	assert.False(t, removed)
	storageMock.AssertNotCalled(t, "AppendAdminLog", mock.Anything)
	storageMock.AssertNotCalled(t, "PublishEvent", mock.Anything)
}

// TestEntriesPassthrough verifies the list is returned as stored.
func TestEntriesPassthrough(t *testing.T) {
	// Arrange
	storageMock, service := newTestService()
	stored := []models.BlacklistEntry{
		{OwnerID: "owner", BlockedUserID: "a", Reason: "spam"},
		{OwnerID: "owner", BlockedUserID: "b"},
	}
	storageMock.On("ListBlacklistEntries", "owner").Return(stored, nil)

	// Act
	entries, err := service.Entries("owner")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, stored, entries)
}
