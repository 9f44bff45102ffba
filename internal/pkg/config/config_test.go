package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// telegramYAML представляет конфигурацию с источником MTProto и несколькими серверами.
const telegramYAML = `
server:
  host: "127.0.0.1"
  port: 8081
  shutdown_timeout_seconds: 15
telegram_api:
  servers:
    - api_id: 12345
      api_hash: "hash1"
      phone_number: "+111"
      session_file: "tg1.session"
    - api_id: 67890
      api_hash: "hash2"
      phone_number: "+222"
      session_file: "tg2.session"
  health_check_interval_seconds: 60
source:
  type: "telegram"
  page_size: 100
processing:
  task_timeout_seconds: 120
  cache_ttl_minutes: 30
storage:
  path: "reports.db"
logging:
  level: "info"
`

// apiSourceYAML представляет конфигурацию с HTTP-бэкендом вместо MTProto.
const apiSourceYAML = `
server:
  host: "0.0.0.0"
  port: 8080
  shutdown_timeout_seconds: 5
source:
  type: "api"
  base_url: "https://backend.example.com"
  token: "secret-token"
  page_size: 50
processing:
  task_timeout_seconds: 0
  cache_ttl_minutes: 60
storage:
  path: "data/reports.db"
logging:
  level: "debug"
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func loadTestConfig(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadFromYAML(createTempConfigFile(t, content))
	require.NoError(t, err)
	cfg.applyDefaults()
	return cfg
}

func TestLoadFromYAML(t *testing.T) {
	t.Run("источник telegram с несколькими серверами", func(t *testing.T) {
		cfg := loadTestConfig(t, telegramYAML)

		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 8081, cfg.Server.Port)
		assert.Equal(t, 15, cfg.Server.ShutdownTimeoutSeconds)
		assert.Equal(t, "127.0.0.1:8081", cfg.Address())

		require.Len(t, cfg.TelegramAPI.Servers, 2)
		assert.Equal(t, 12345, cfg.TelegramAPI.Servers[0].APIID)
		assert.Equal(t, "hash1", cfg.TelegramAPI.Servers[0].APIHash)
		assert.Equal(t, 67890, cfg.TelegramAPI.Servers[1].APIID)
		assert.Equal(t, "hash2", cfg.TelegramAPI.Servers[1].APIHash)
		assert.Equal(t, 60, cfg.TelegramAPI.HealthCheckIntervalSeconds)

		assert.Equal(t, SourceTypeTelegram, cfg.Source.Type)
		assert.Equal(t, 100, cfg.Source.PageSize)
		assert.Equal(t, 120, cfg.Processing.TaskTimeoutSeconds)
		assert.Equal(t, 30*time.Minute, cfg.CacheTTL())
		assert.Equal(t, "reports.db", cfg.Storage.Path)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("источник api", func(t *testing.T) {
		cfg := loadTestConfig(t, apiSourceYAML)

		assert.Equal(t, SourceTypeAPI, cfg.Source.Type)
		assert.Equal(t, "https://backend.example.com", cfg.Source.BaseURL)
		assert.Equal(t, "secret-token", cfg.Source.Token)
		assert.Equal(t, 50, cfg.Source.PageSize)
		assert.Equal(t, "data/reports.db", cfg.Storage.Path)
	})

	t.Run("несуществующий файл возвращает ошибку", func(t *testing.T) {
		_, err := loadFromYAML("non_existent_file.yml")
		assert.Error(t, err)
	})

	t.Run("некорректный yaml", func(t *testing.T) {
		_, err := loadFromYAML(createTempConfigFile(t, "invalid yaml: {"))
		assert.Error(t, err)
	})
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, DefaultServerHost, cfg.Server.Host)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, SourceTypeTelegram, cfg.Source.Type)
	assert.Equal(t, DefaultPageSize, cfg.Source.PageSize)
	assert.Equal(t, DefaultStoragePath, cfg.Storage.Path)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL())
}

func TestGetTelegramServers(t *testing.T) {
	t.Run("современный формат", func(t *testing.T) {
		cfg := loadTestConfig(t, telegramYAML)
		servers := cfg.GetTelegramServers()
		require.Len(t, servers, 2)
		assert.Equal(t, 12345, servers[0].APIID)
		assert.Equal(t, 67890, servers[1].APIID)
	})

	t.Run("устаревший формат из корневого объекта", func(t *testing.T) {
		cfg := &Config{}
		cfg.TelegramAPI.APIID = 98765
		cfg.TelegramAPI.APIHash = "legacy_hash"
		cfg.TelegramAPI.PhoneNumber = "+333"
		cfg.TelegramAPI.SessionFile = "legacy.session"

		servers := cfg.GetTelegramServers()
		require.Len(t, servers, 1)
		assert.Equal(t, 98765, servers[0].APIID)
		assert.Equal(t, "legacy.session", servers[0].SessionFile)
	})

	t.Run("пустая конфигурация возвращает nil", func(t *testing.T) {
		cfg := &Config{}
		assert.Nil(t, cfg.GetTelegramServers())
	})
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		yaml    string
		mutator func(*Config)
		wantErr bool
	}{
		{"valid telegram", telegramYAML, func(c *Config) {}, false},
		{"valid api", apiSourceYAML, func(c *Config) {}, false},
		{"no servers", telegramYAML, func(c *Config) { c.TelegramAPI.Servers = nil }, true},
		{"invalid server api_id", telegramYAML, func(c *Config) { c.TelegramAPI.Servers[0].APIID = 0 }, true},
		{"empty server api_hash", telegramYAML, func(c *Config) { c.TelegramAPI.Servers[0].APIHash = "" }, true},
		{"empty server phone", telegramYAML, func(c *Config) { c.TelegramAPI.Servers[0].PhoneNumber = "" }, true},
		{"unknown source type", telegramYAML, func(c *Config) { c.Source.Type = "ftp" }, true},
		{"api source without base_url", apiSourceYAML, func(c *Config) { c.Source.BaseURL = "" }, true},
		{"file source without dialogs_path", apiSourceYAML, func(c *Config) { c.Source.Type = SourceTypeFile }, true},
		{"invalid page_size", telegramYAML, func(c *Config) { c.Source.PageSize = 0 }, true},
		{"invalid port", telegramYAML, func(c *Config) { c.Server.Port = 0 }, true},
		{"invalid shutdown timeout", telegramYAML, func(c *Config) { c.Server.ShutdownTimeoutSeconds = 0 }, true},
		{"invalid task_timeout", telegramYAML, func(c *Config) { c.Processing.TaskTimeoutSeconds = -1 }, true},
		{"invalid cache_ttl", telegramYAML, func(c *Config) { c.Processing.CacheTTLMinutes = 0 }, true},
		{"invalid health_check", telegramYAML, func(c *Config) { c.TelegramAPI.HealthCheckIntervalSeconds = 0 }, true},
		{"empty storage path", telegramYAML, func(c *Config) { c.Storage.Path = "" }, true},
		{"invalid logging level", telegramYAML, func(c *Config) { c.Logging.Level = "wrong" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := loadTestConfig(t, tc.yaml)
			tc.mutator(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
