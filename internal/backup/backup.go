// Package backup produces the daily datastore snapshot: a gzipped JSON dump
// of rooms, blacklist entries and admin logs. Finished snapshots are pruned
// after the retention window and posted to the configured backup channel, and
// the same cycle sweeps expired admin log rows.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"roomgogo/bot/internal/auditlog"
	"roomgogo/bot/internal/config"
	"roomgogo/bot/internal/models"
	"roomgogo/bot/internal/storage"

	"github.com/klauspost/compress/gzip"
)

const snapshotPrefix = "snapshot_"

// Uploader posts a finished snapshot somewhere visible to the moderators.
type Uploader interface {
	UploadBackup(path string) error
}

// Snapshot is the document written to disk.
type Snapshot struct {
	CreatedAt time.Time               `json:"created_at"`
	Rooms     []models.Room           `json:"rooms"`
	Blacklist []models.BlacklistEntry `json:"blacklist"`
	AdminLogs []models.AdminLog       `json:"admin_logs"`
}

type Service struct {
	Storage  storage.Storage
	Audit    *auditlog.Service
	Uploader Uploader
	Dir      string
}

func NewService(s storage.Storage, audit *auditlog.Service, uploader Uploader, dir string) *Service {
	return &Service{Storage: s, Audit: audit, Uploader: uploader, Dir: dir}
}

// Run executes the snapshot cycle once a day at the configured hour until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) {
	for {
		wait := untilNextRun(time.Now().UTC())
		log.Printf("INFO: Next backup in %s", wait.Round(time.Second))

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if _, err := s.RunOnce(); err != nil {
			log.Printf("ERROR: Backup cycle failed: %v", err)
		}
	}
}

// untilNextRun computes the wait until the next daily run. A run scheduled
// for this very instant waits a full day, so a cycle never fires twice.
func untilNextRun(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), config.BackupHourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// RunOnce writes one snapshot and runs the maintenance hanging off it:
// pruning stale snapshots, uploading the fresh one, sweeping expired admin
// logs. Only the snapshot itself is fatal; everything after is best-effort.
func (s *Service) RunOnce() (string, error) {
	now := time.Now().UTC()

	path, err := s.writeSnapshot(now)
	if err != nil {
		return "", err
	}
	log.Printf("INFO: Snapshot written to %s", path)

	s.pruneOld(now)

	if s.Uploader != nil {
		if err := s.Uploader.UploadBackup(path); err != nil {
			log.Printf("WARNING: Snapshot upload failed: %v", err)
		}
	}

	purged, err := s.Audit.PurgeOlderThan(now.AddDate(0, 0, -config.LogRetentionDays))
	if err != nil {
		log.Printf("ERROR: Admin log sweep failed: %v", err)
	}

	event := models.NewRoomEvent(models.EventBackupFinished, "")
	event.Details = fmt.Sprintf("snapshot=%s purged_logs=%d", filepath.Base(path), purged)
	if err := s.Storage.PublishEvent(event); err != nil {
		log.Printf("WARNING: Failed to publish backup event: %v", err)
	}

	return path, nil
}

func (s *Service) writeSnapshot(now time.Time) (string, error) {
	rooms, err := s.Storage.ListRooms()
	if err != nil {
		return "", fmt.Errorf("failed to export rooms: %w", err)
	}
	entries, err := s.Storage.AllBlacklistEntries()
	if err != nil {
		return "", fmt.Errorf("failed to export blacklist: %w", err)
	}
	logs, err := s.Storage.AllAdminLogs()
	if err != nil {
		return "", fmt.Errorf("failed to export admin logs: %w", err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	name := snapshotPrefix + now.Format("2006-01-02_15-04-05") + ".json.gz"
	path := filepath.Join(s.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	snap := Snapshot{CreatedAt: now, Rooms: rooms, Blacklist: entries, AdminLogs: logs}
	if err := json.NewEncoder(gz).Encode(snap); err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed to finish snapshot: %w", err)
	}
	return path, nil
}

// pruneOld removes snapshots whose mtime fell out of the retention window.
// Files without the snapshot prefix are left alone.
func (s *Service) pruneOld(now time.Time) {
	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil {
		log.Printf("WARNING: Failed to scan backup dir: %v", err)
		return
	}

	cutoff := now.Add(-config.BackupRetention)
	for _, entry := range dirEntries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), snapshotPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.Dir, entry.Name())
			if err := os.Remove(path); err != nil {
				log.Printf("WARNING: Failed to remove old snapshot %s: %v", path, err)
				continue
			}
			log.Printf("INFO: Removed old snapshot %s", path)
		}
	}
}
