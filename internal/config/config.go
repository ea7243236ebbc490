package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Telegram
	BotToken              string
	StorageChannelID      int64 // channel holding the raw media messages
	VerificationChannelID int64 // channel that receives catalog announcements
	ProbeChatID           int64 // chat used for transient message probes during scans

	// TMDB
	TMDBAPIKey       string
	TMDBLanguage     string // primary search language (default: es-ES)
	TMDBFallbackLang string // secondary search language (default: en-US)

	// Scanning
	ScanEmptyThreshold int    // consecutive missing messages before an interactive scan stops (default: 5)
	BulkEmptyThreshold int    // same for background bulk scans (default: 10)
	BulkScanLimit      int    // upper bound on messages per bulk scan (default: 2000)
	BulkScanSchedule   string // cron spec for background scans (default: every 6 hours)

	// Sessions
	SessionTTL time.Duration // operator session inactivity window (default: 6h)

	// Server
	ServerPort string

	// Paths
	DatabaseFile string // $CONFIG_DIR/cinarr.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	viper.SetDefault("TMDB_LANGUAGE", "es-ES")
	viper.SetDefault("TMDB_FALLBACK_LANGUAGE", "en-US")
	viper.SetDefault("SCAN_EMPTY_THRESHOLD", 5)
	viper.SetDefault("BULK_EMPTY_THRESHOLD", 10)
	viper.SetDefault("BULK_SCAN_LIMIT", 2000)
	viper.SetDefault("BULK_SCAN_SCHEDULE", "0 */6 * * *")
	viper.SetDefault("SESSION_TTL_HOURS", 6)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "cinarr")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		BotToken:              viper.GetString("BOT_TOKEN"),
		StorageChannelID:      viper.GetInt64("STORAGE_CHANNEL_ID"),
		VerificationChannelID: viper.GetInt64("VERIFICATION_CHANNEL_ID"),
		ProbeChatID:           viper.GetInt64("PROBE_CHAT_ID"),

		TMDBAPIKey:       viper.GetString("TMDB_API_KEY"),
		TMDBLanguage:     viper.GetString("TMDB_LANGUAGE"),
		TMDBFallbackLang: viper.GetString("TMDB_FALLBACK_LANGUAGE"),

		ScanEmptyThreshold: viper.GetInt("SCAN_EMPTY_THRESHOLD"),
		BulkEmptyThreshold: viper.GetInt("BULK_EMPTY_THRESHOLD"),
		BulkScanLimit:      viper.GetInt("BULK_SCAN_LIMIT"),
		BulkScanSchedule:   viper.GetString("BULK_SCAN_SCHEDULE"),

		SessionTTL: time.Duration(viper.GetInt("SESSION_TTL_HOURS")) * time.Hour,

		ServerPort: viper.GetString("SERVER_PORT"),

		DatabaseFile: filepath.Join(configDir, "cinarr.db"),

		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate required fields
	if config.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if config.StorageChannelID == 0 {
		return nil, fmt.Errorf("STORAGE_CHANNEL_ID is required")
	}
	if config.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}
	if config.ProbeChatID == 0 {
		// Probes land in the verification channel when no dedicated
		// probe chat is configured.
		config.ProbeChatID = config.VerificationChannelID
	}

	return config, nil
}
