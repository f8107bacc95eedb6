package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	// Основные настройки приложения
	App AppConfigStruct `json:"app"`

	// База данных
	Database DatabaseConfig `json:"database"`

	// Хранилище коллекций
	Storage StorageConfig `json:"storage"`

	// Redis
	Redis RedisConfig `json:"redis"`

	// Распознавание изображений (Gemini)
	Gemini GeminiConfig `json:"gemini"`

	// CORS
	CORS CORSConfig `json:"cors"`

	// Безопасность
	Security SecurityConfig `json:"security"`

	// Логирование
	Logging LoggingConfig `json:"logging"`

	// Ежедневная сводка
	Digest DigestConfig `json:"digest"`

	// Экспорт отчетов
	Export ExportConfig `json:"export"`
}

type AppConfigStruct struct {
	Env   string `json:"env"`
	Port  string `json:"port"`
	Host  string `json:"host"`
	Debug bool   `json:"debug"`
}

type DatabaseConfig struct {
	Driver          string        `json:"driver"` // sqlite, postgres
	SQLitePath      string        `json:"sqlite_path"`
	Host            string        `json:"host"`
	Port            string        `json:"port"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	Name            string        `json:"name"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

type StorageConfig struct {
	Backend   string `json:"backend"` // database, redis
	KeyPrefix string `json:"key_prefix"`
}

type RedisConfig struct {
	Enabled  bool          `json:"enabled"`
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	Timeout  time.Duration `json:"timeout"`
	MaxConns int           `json:"max_connections"`
}

type GeminiConfig struct {
	APIKey string `json:"-"`
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

type SecurityConfig struct {
	ScanRateLimitRequests int           `json:"scan_rate_limit_requests"`
	ScanRateLimitWindow   time.Duration `json:"scan_rate_limit_window"`
	MaxUploadSize         int64         `json:"max_upload_size"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json, console
}

type DigestConfig struct {
	Enabled          bool   `json:"enabled"`
	Schedule         string `json:"schedule"` // cron с секундами
	TelegramBotToken string `json:"-"`
	TelegramChatID   string `json:"telegram_chat_id"`
}

type ExportConfig struct {
	Title string `json:"title"`
}

// DefaultExtractionPrompt запрос к модели распознавания
const DefaultExtractionPrompt = "Atue como Perito Veicular Sênior. Extraia a Placa (Mercosul), Marca, Modelo e IMEI se visível. Retorne apenas JSON."

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	// Загружаем .env файл если он существует
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	config := &Config{
		App: AppConfigStruct{
			Env:   getEnv("APP_ENV", "development"),
			Port:  getEnv("APP_PORT", "8080"),
			Host:  getEnv("APP_HOST", "0.0.0.0"),
			Debug: getEnvBool("DEBUG_MODE", false),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			SQLitePath:      getEnv("DB_PATH", "checkmaster.db"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "checkmaster"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 300*time.Second),
		},
		Storage: StorageConfig{
			Backend:   getEnv("STORAGE_BACKEND", "database"),
			KeyPrefix: getEnv("STORAGE_KEY_PREFIX", "cm_"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Timeout:  getEnvDuration("REDIS_TIMEOUT", 5*time.Second),
			MaxConns: getEnvInt("REDIS_MAX_CONNECTIONS", 10),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
			Model:  getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
			Prompt: getEnv("GEMINI_PROMPT", DefaultExtractionPrompt),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getEnvSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Accept", "Origin", "X-Requested-With"}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvInt("CORS_MAX_AGE", 86400),
		},
		Security: SecurityConfig{
			ScanRateLimitRequests: getEnvInt("SCAN_RATE_LIMIT_REQUESTS", 20),
			ScanRateLimitWindow:   getEnvDuration("SCAN_RATE_LIMIT_WINDOW", time.Minute),
			MaxUploadSize:         int64(getEnvInt("MAX_UPLOAD_SIZE", 10<<20)),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Digest: DigestConfig{
			Enabled:          getEnvBool("DIGEST_ENABLED", false),
			Schedule:         getEnv("DIGEST_SCHEDULE", "0 0 20 * * *"),
			TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
		Export: ExportConfig{
			Title: getEnv("EXPORT_TITLE", "RELATÓRIO DE FATURAMENTO - CHECKMASTER AUTO"),
		},
	}

	// Валидация критически важных настроек
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("DB_PATH cannot be empty for sqlite")
		}
	case "postgres":
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME cannot be empty")
		}
		if c.Database.User == "" {
			return fmt.Errorf("DB_USER cannot be empty")
		}
		if c.IsProduction() && c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required in production")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.Database.Driver)
	}

	switch c.Storage.Backend {
	case "database":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("STORAGE_BACKEND=redis requires REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND: %s", c.Storage.Backend)
	}

	if c.Security.ScanRateLimitRequests <= 0 {
		return fmt.Errorf("SCAN_RATE_LIMIT_REQUESTS must be positive")
	}

	if c.Digest.Enabled {
		if c.Digest.TelegramBotToken == "" || c.Digest.TelegramChatID == "" {
			return fmt.Errorf("DIGEST_ENABLED requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
		}
	}

	return nil
}

// Вспомогательные функции для получения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: Invalid integer value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		log.Printf("Warning: Invalid boolean value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: Invalid duration value for %s: %s, using default: %v", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsProduction проверяет, запущено ли приложение в продакшене
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// GetDatabaseDSN возвращает строку подключения к БД
func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

// ExtractionEnabled true, если задан ключ Gemini
func (c *Config) ExtractionEnabled() bool {
	return c.Gemini.APIKey != ""
}
