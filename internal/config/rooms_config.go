package config

import "time"

const (
	// Occupancy
	FullThreshold = 2
	LimitHeadroom = 1

	// Provisioning
	DetailsMaxLength = 200
	RoleNameLength   = 12

	// Retention
	BackupHourUTC    = 12
	BackupRetention  = 7 * 24 * time.Hour
	LogRetentionDays = 30

	// Admin logs
	DefaultLogLimit = 10
	MaxLogLimit     = 50
)

// Component custom IDs. Buttons carry the audience after the prefix.
const (
	CustomIDCreatePrefix = "room-create:"
	CustomIDRoomList     = "room-list"
	CustomIDDetailsModal = "room-details:"
	CustomIDDetailsInput = "room-details-input"
)
