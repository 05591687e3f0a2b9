package config

import (
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		BibleAPI
		Backup
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	BibleAPI struct {
		BaseURL          string
		TimeoutInSeconds int
	}
	Backup struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
		Dir      string
		Title    string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8199)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("bible_api_base_url", "https://bible-api.com")
	v.SetDefault("bible_api_timeout_in_seconds", 10)

	// Backup export defaults
	v.SetDefault("backup_enabled", false)
	v.SetDefault("backup_schedule", "0 3 * * *") // Daily at 03:00
	v.SetDefault("backup_dir", "./backups")
	v.SetDefault("backup_title", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		BibleAPI: BibleAPI{
			BaseURL:          v.GetString("BIBLE_API_BASE_URL"),
			TimeoutInSeconds: v.GetInt("BIBLE_API_TIMEOUT_IN_SECONDS"),
		},
		Backup: Backup{
			Enabled:  v.GetBool("BACKUP_ENABLED"),
			Schedule: v.GetString("BACKUP_SCHEDULE"),
			Dir:      v.GetString("BACKUP_DIR"),
			Title:    v.GetString("BACKUP_TITLE"),
		},
	}
}
