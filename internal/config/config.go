package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	Discord DiscordConfig

	// Database configuration
	Database DatabaseConfig

	// Roster configuration
	Roster RosterConfig

	// Status API configuration
	Status StatusConfig
}

// DiscordConfig holds Discord gateway settings
type DiscordConfig struct {
	Token         string
	ChannelID     string
	MessageID     string
	ReactionEmoji string
	VerifiedRole  string
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path           string
	MigrationsPath string
}

// RosterConfig holds the authoritative roster endpoint settings
type RosterConfig struct {
	URL string
	// EmailColumn is matched against the CSV header exactly as provided
	// (trimmed). Override via ROSTER_EMAIL_COLUMN when the upstream export
	// renames or re-encodes the header.
	EmailColumn string
	Timeout     time.Duration
}

// StatusConfig holds the bot's read-only status API settings
type StatusConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// DefaultEmailColumn is the email header name as the upstream CSV export
// emits it, arrow character included.
const DefaultEmailColumn = "Users → Email"

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Discord: DiscordConfig{
			Token:         getEnv("DISCORD_TOKEN", ""),
			ChannelID:     getEnv("CHANNEL_ID", ""),
			MessageID:     getEnv("MESSAGE_ID", ""),
			ReactionEmoji: getEnv("REACTION_EMOJI", "➕"),
			VerifiedRole:  getEnv("VERIFIED_ROLE", "verified"),
		},
		Database: DatabaseConfig{
			Path:           getEnv("DATABASE_PATH", "./student_emails.db"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Roster: RosterConfig{
			URL:         getEnv("ROSTER_URL", ""),
			EmailColumn: getEnv("ROSTER_EMAIL_COLUMN", DefaultEmailColumn),
			Timeout:     getDurationEnv("ROSTER_TIMEOUT", 30*time.Second),
		},
		Status: StatusConfig{
			Port:            getEnv("STATUS_PORT", "8080"),
			ShutdownTimeout: getDurationEnv("STATUS_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// ValidateBot checks the settings the intake bot additionally needs
func (c *Config) ValidateBot() error {
	if c.Discord.ChannelID == "" {
		return fmt.Errorf("CHANNEL_ID is required")
	}
	if c.Discord.MessageID == "" {
		return fmt.Errorf("MESSAGE_ID is required")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
