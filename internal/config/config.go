package config

import (
	"time"

	"github.com/spf13/viper"
)

type BackendMode string

const (
	BackendModeLocal  BackendMode = "local"  // Members, registrations and payments in the local database (default)
	BackendModeRemote BackendMode = "remote" // Members, registrations and payments through a remote API
)

type (
	Config struct {
		HTTP
		Global
		Database
		Tasks
		Log
		Import
		Backend
		API
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
	Tasks struct {
		Enabled            bool
		Workers            int
		ReleaseAfter       time.Duration
		CleanupInterval    time.Duration
		AuditRetentionDays int
	}
	Log struct {
		Level       string // debug, info, warn, error
		Development bool   // Console encoder instead of JSON
	}
	Import struct {
		OrganizationID  string
		PeriodID        string        // Default registration period for imports
		Country         string        // ISO 3166 alpha-2 country used for phone numbers and addresses
		RowDelay        time.Duration // Pause between committed rows
		PreviewWorkers  int           // Parallel rows while parsing
		SessionTTL      time.Duration // How long an idle import session is kept
		CleanupSchedule string        // Cron format: "*/10 * * * *" = every 10 minutes
		RecordsPath     string        // YAML file with custom record categories
		MaxUploadBytes  int64
	}
	Backend struct {
		Mode    BackendMode
		BaseURL string // Remote API base URL, e.g. "https://members.example.org/api"
		Token   string // Bearer token for the remote API
		Timeout time.Duration
	}
	API struct {
		Token string // Bearer token protecting the backend API; empty disables the backend API
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)

	// Import defaults
	v.SetDefault("import_organization_id", "default")
	v.SetDefault("import_period_id", "")
	v.SetDefault("import_country", "BE")
	v.SetDefault("import_row_delay", "100ms")
	v.SetDefault("import_preview_workers", 4)
	v.SetDefault("import_session_ttl", "2h")
	v.SetDefault("import_cleanup_schedule", "*/10 * * * *") // Every 10 minutes
	v.SetDefault("import_records_path", DefaultRecordsPath)
	v.SetDefault("import_max_upload_bytes", 10<<20) // 10 MiB

	// Backend defaults
	v.SetDefault("backend_mode", "local")
	v.SetDefault("backend_base_url", "")
	v.SetDefault("backend_token", "")
	v.SetDefault("backend_timeout", "30s")

	v.SetDefault("api_token", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1) // One commit at a time
	v.SetDefault("task_release_after", "75m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("audit_retention_days", 90)

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
		Tasks: Tasks{
			Enabled:            v.GetBool("TASKS_ENABLED"),
			Workers:            v.GetInt("TASK_WORKERS"),
			ReleaseAfter:       v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:    v.GetDuration("TASK_CLEANUP_INTERVAL"),
			AuditRetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Log: Log{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
		Import: Import{
			OrganizationID:  v.GetString("IMPORT_ORGANIZATION_ID"),
			PeriodID:        v.GetString("IMPORT_PERIOD_ID"),
			Country:         v.GetString("IMPORT_COUNTRY"),
			RowDelay:        v.GetDuration("IMPORT_ROW_DELAY"),
			PreviewWorkers:  v.GetInt("IMPORT_PREVIEW_WORKERS"),
			SessionTTL:      v.GetDuration("IMPORT_SESSION_TTL"),
			CleanupSchedule: v.GetString("IMPORT_CLEANUP_SCHEDULE"),
			RecordsPath:     v.GetString("IMPORT_RECORDS_PATH"),
			MaxUploadBytes:  v.GetInt64("IMPORT_MAX_UPLOAD_BYTES"),
		},
		Backend: Backend{
			Mode:    BackendMode(v.GetString("BACKEND_MODE")),
			BaseURL: v.GetString("BACKEND_BASE_URL"),
			Token:   v.GetString("BACKEND_TOKEN"),
			Timeout: v.GetDuration("BACKEND_TIMEOUT"),
		},
		API: API{
			Token: v.GetString("API_TOKEN"),
		},
	}
}
