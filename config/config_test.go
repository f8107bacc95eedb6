package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "database", cfg.Storage.Backend)
	assert.Equal(t, "cm_", cfg.Storage.KeyPrefix)
	assert.Equal(t, DefaultExtractionPrompt, cfg.Gemini.Prompt)
	assert.Equal(t, cfg.Database.SQLitePath, cfg.GetDatabaseDSN())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite", SQLitePath: "test.db"},
			Storage:  StorageConfig{Backend: "database"},
			Security: SecurityConfig{ScanRateLimitRequests: 10},
		}
	}

	t.Run("Корректная конфигурация", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("Неизвестный драйвер БД", func(t *testing.T) {
		c := base()
		c.Database.Driver = "mysql"
		assert.Error(t, c.Validate())
	})

	t.Run("Redis хранилище без Redis", func(t *testing.T) {
		c := base()
		c.Storage.Backend = "redis"
		assert.Error(t, c.Validate())

		c.Redis.Enabled = true
		assert.NoError(t, c.Validate())
	})

	t.Run("Сводка без токена Telegram", func(t *testing.T) {
		c := base()
		c.Digest.Enabled = true
		assert.Error(t, c.Validate())

		c.Digest.TelegramBotToken = "token"
		c.Digest.TelegramChatID = "42"
		assert.NoError(t, c.Validate())
	})

	t.Run("Нулевой лимит запросов", func(t *testing.T) {
		c := base()
		c.Security.ScanRateLimitRequests = 0
		assert.Error(t, c.Validate())
	})

	t.Run("Postgres требует пароль в продакшене", func(t *testing.T) {
		c := base()
		c.App.Env = "production"
		c.Database = DatabaseConfig{Driver: "postgres", Name: "checkmaster", User: "postgres"}
		assert.Error(t, c.Validate())

		c.Database.Password = "secret"
		assert.NoError(t, c.Validate())
		assert.Contains(t, c.GetDatabaseDSN(), "dbname=checkmaster")
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger(LoggingConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)

	_, err = NewLogger(LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
