package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"roomgogo/bot/internal/models"
	"roomgogo/bot/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "bl-add":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin bl-add <owner_id> <blocked_user_id> [reason]")
			os.Exit(1)
		}
		reason := ""
		if len(os.Args) > 4 {
			reason = os.Args[4]
		}
		if err := addBlacklistEntry(storageSvc, os.Args[2], os.Args[3], reason); err != nil {
			log.Fatalf("Error adding blacklist entry: %v", err)
		}
		fmt.Printf("User %s is now blocked by %s.\n", os.Args[3], os.Args[2])
	case "bl-remove":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin bl-remove <owner_id> <blocked_user_id>")
			os.Exit(1)
		}
		removed, err := storageSvc.DeleteBlacklistEntry(os.Args[2], os.Args[3])
		if err != nil {
			log.Fatalf("Error removing blacklist entry: %v", err)
		}
		if !removed {
			fmt.Println("No such blacklist entry.")
			os.Exit(1)
		}
		fmt.Printf("User %s is no longer blocked by %s.\n", os.Args[3], os.Args[2])
	case "bl-list":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin bl-list <owner_id>")
			os.Exit(1)
		}
		if err := printBlacklist(storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error listing blacklist: %v", err)
		}
	case "clear-rooms":
		// Drops the room registry only. Use after the Discord channels were
		// already removed by hand; the running bot cleans up both sides.
		count, err := storageSvc.DeleteAllRooms()
		if err != nil {
			log.Fatalf("Error clearing rooms: %v", err)
		}
		fmt.Printf("Deleted %d room(s).\n", count)
	case "purge-logs":
		days := 30
		if len(os.Args) > 2 {
			days, err = strconv.Atoi(os.Args[2])
			if err != nil || days < 0 {
				fmt.Println("Invalid day count. Please provide a non-negative integer.")
				os.Exit(1)
			}
		}
		cutoff := time.Now().AddDate(0, 0, -days)
		count, err := storageSvc.PurgeAdminLogsBefore(cutoff)
		if err != nil {
			log.Fatalf("Error purging admin logs: %v", err)
		}
		fmt.Printf("Purged %d log entries older than %d day(s).\n", count, days)
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func addBlacklistEntry(s storage.Storage, ownerID, blockedUserID, reason string) error {
	if ownerID == blockedUserID {
		return fmt.Errorf("owner and blocked user are the same")
	}
	return s.UpsertBlacklistEntry(&models.BlacklistEntry{
		OwnerID:       ownerID,
		BlockedUserID: blockedUserID,
		Reason:        reason,
	})
}

func printBlacklist(s storage.Storage, ownerID string) error {
	entries, err := s.ListBlacklistEntries(ownerID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Blacklist is empty.")
		return nil
	}
	for _, entry := range entries {
		line := entry.BlockedUserID
		if entry.Reason != "" {
			line += " (" + entry.Reason + ")"
		}
		fmt.Println(line)
	}
	return nil
}
