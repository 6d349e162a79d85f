package handler

import (
	"roomgogo/bot/internal/auditlog"
	"roomgogo/bot/internal/eventhub"
	"roomgogo/bot/internal/storage"
)

// Handler serves the operator API: token issuance, room and journal reads,
// and the live event feed.
type Handler struct {
	Hub     *eventhub.ManagerService
	Storage storage.Storage
	Audit   *auditlog.Service

	// OpsSecret gates token issuance. An empty value keeps issuance closed.
	OpsSecret string
	// JWTSecret signs and verifies feed tokens.
	JWTSecret []byte
}

func NewHandler(hub *eventhub.ManagerService, s storage.Storage, audit *auditlog.Service, opsSecret, jwtSecret string) *Handler {
	return &Handler{
		Hub:       hub,
		Storage:   s,
		Audit:     audit,
		OpsSecret: opsSecret,
		JWTSecret: []byte(jwtSecret),
	}
}
