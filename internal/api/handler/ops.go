package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Healthz is the liveness probe.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListRooms returns every active room, newest first.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.Storage.ListRooms()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rooms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rooms), "rooms": rooms})
}

// RecentLogs returns the newest admin journal entries. The limit query
// parameter is clamped by the audit service.
func (h *Handler) RecentLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	entries, err := h.Audit.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(entries), "logs": entries})
}
