package config

import (
	"time"

	"github.com/spf13/viper"
)

type SessionStoreKind string

const (
	SessionStoreMemory SessionStoreKind = "memory" // Sessions vanish on restart (default)
	SessionStoreSQLite SessionStoreKind = "sqlite" // Sessions survive restarts until they expire
)

type (
	Config struct {
		HTTP
		Global
		Session
		Gemini
		Upload
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Session struct {
		Store         SessionStoreKind
		DatabasePath  string
		Lifetime      time.Duration
		IdleTimeout   time.Duration
		Secret        string // CSRF key material; random per process when empty
		SecureCookies bool   // Set to false for local dev without HTTPS
	}
	Gemini struct {
		PromptModel       string
		ImageModel        string
		GenerationTimeout time.Duration
	}
	Upload struct {
		MaxImageMB int
	}
	Log struct {
		File       string // Rotated log file in addition to stderr; disabled when empty
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
	}
)

// MaxImageBytes is the upload limit in bytes.
func (u Upload) MaxImageBytes() int64 {
	return int64(u.MaxImageMB) << 20
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	// Session defaults
	v.SetDefault("session_store", string(SessionStoreMemory))
	v.SetDefault("session_db_path", DefaultSessionDatabasePath)
	v.SetDefault("session_lifetime", "12h")
	v.SetDefault("session_idle_timeout", "2h")
	v.SetDefault("session_secret", "")
	v.SetDefault("secure_cookies", true)

	// Gemini defaults
	v.SetDefault("gemini_prompt_model", DefaultPromptModel)
	v.SetDefault("gemini_image_model", DefaultImageModel)
	v.SetDefault("gemini_generation_timeout", "2m")

	v.SetDefault("max_upload_mb", 10)

	// Log file rotation defaults
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 10)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 28)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Session: Session{
			Store:         SessionStoreKind(v.GetString("SESSION_STORE")),
			DatabasePath:  v.GetString("SESSION_DB_PATH"),
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			IdleTimeout:   v.GetDuration("SESSION_IDLE_TIMEOUT"),
			Secret:        v.GetString("SESSION_SECRET"),
			SecureCookies: v.GetBool("SECURE_COOKIES"),
		},
		Gemini: Gemini{
			PromptModel:       v.GetString("GEMINI_PROMPT_MODEL"),
			ImageModel:        v.GetString("GEMINI_IMAGE_MODEL"),
			GenerationTimeout: v.GetDuration("GEMINI_GENERATION_TIMEOUT"),
		},
		Upload: Upload{
			MaxImageMB: v.GetInt("MAX_UPLOAD_MB"),
		},
		Log: Log{
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
	}
}
