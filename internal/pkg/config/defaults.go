package config

import "time"

// Типы источников диалогов.
const (
	SourceTypeTelegram = "telegram"
	SourceTypeAPI      = "api"
	SourceTypeFile     = "file"
)

// Default values for configuration.
const (
	// Server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultCleanupInterval = 1 * time.Hour

	// Processing defaults
	DefaultTaskTimeout = 600 * time.Second
	DefaultCacheTTL    = 60 * time.Minute

	// Source defaults
	DefaultPageSize = 100

	// Storage defaults
	DefaultStoragePath = "reports.db"

	// Telegram API defaults
	DefaultHealthCheckInterval  = 30 * time.Second
	DefaultTelegramRequestDelay = 0 * time.Second

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
