package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomgogo/bot/internal/api/handler"
	"roomgogo/bot/internal/auditlog"
	"roomgogo/bot/internal/backup"
	"roomgogo/bot/internal/config"
	"roomgogo/bot/internal/discord"
	"roomgogo/bot/internal/eventhub"
	"roomgogo/bot/internal/models"
	"roomgogo/bot/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	// TranslateError turns the unique-index violation on rooms.creator_id
	// into gorm.ErrDuplicatedKey, which storage maps to ErrDuplicateRoom.
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Migrations
	err = db.AutoMigrate(
		&models.Room{},
		&models.BlacklistEntry{},
		&models.AdminLog{},
		&models.GuildSettings{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting RoomGoGo Bot...")

	cfg := config.Load()
	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_TOKEN is not set!")
	}

	// 1. Dependencies
	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)
	audit := auditlog.NewService(s)

	// 2. Discord bot
	botService, err := discord.NewBotService(cfg.DiscordToken, cfg.GuildID, cfg.LocalesPath, cfg.DefaultLanguage, s)
	if err != nil {
		log.Fatalf("Failed to create the Discord bot: %v", err)
	}
	if err := botService.Run(); err != nil {
		log.Fatalf("Failed to start the Discord bot: %v", err)
	}

	// 3. Background goroutines
	hub := eventhub.NewManagerService(s)
	go hub.Run() // feed dispatcher

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	backupService := backup.NewService(s, audit, botService, cfg.BackupDir)
	go backupService.Run(ctx) // daily snapshot

	// 4. Gin and routing
	r := gin.Default()
	h := handler.NewHandler(hub, s, audit, cfg.OpsSecret, cfg.JWTSecret)

	r.GET("/healthz", h.Healthz)
	r.POST("/token", h.IssueToken) // JWT issuance for the feed
	r.GET("/rooms", h.ListRooms)
	r.GET("/logs", h.RecentLogs)
	r.GET("/ws", h.ServeWebSocket) // WebSocket upgrade

	server := &http.Server{
		Addr:           cfg.APIAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server stopped: %v", err)
		}
	}()

	log.Println("Bot is now running. SIGINT, SIGTERM, or CTRL+C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	log.Println("Shutting down...")
	botService.Stop()
}
