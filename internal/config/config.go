package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the process-level settings read from the environment.
type Config struct {
	DiscordToken string
	GuildID      string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string
	RedisPassword string

	APIAddr   string
	OpsSecret string
	JWTSecret string

	LocalesPath     string
	BackupDir       string
	DefaultLanguage string
}

// Load reads configuration from environment variables. In development it
// loads a .env file first if one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		GuildID:      os.Getenv("GUILD_ID"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "roomgogodb"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		APIAddr:   getEnv("API_ADDR", ":8080"),
		OpsSecret: os.Getenv("OPS_SECRET"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		LocalesPath:     getEnv("LOCALES_PATH", "locales"),
		BackupDir:       getEnv("BACKUP_DIR", "backups"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "ja"),
	}
}

// DSN assembles the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
