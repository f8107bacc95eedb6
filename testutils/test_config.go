package testutils

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"checkmaster/config"
	"checkmaster/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB создает тестовую базу данных SQLite во временном каталоге
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Отключаем логи в тестах
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { CleanupTestDB(db) })
	return db
}

// NewTestStore хранилище коллекций поверх тестовой БД
func NewTestStore(t *testing.T) *database.GormKV {
	t.Helper()
	return database.NewGormKV(SetupTestDB(t), "cm_")
}

// TestConfig конфигурация для тестов: sqlite, без Redis и Gemini
func TestConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfigStruct{Env: "test", Port: "8080"},
		Database: config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"},
		Storage:  config.StorageConfig{Backend: "database", KeyPrefix: "cm_"},
		Gemini:   config.GeminiConfig{Model: "gemini-3-flash-preview", Prompt: config.DefaultExtractionPrompt},
		Security: config.SecurityConfig{ScanRateLimitRequests: 100, MaxUploadSize: 1 << 20},
		Logging:  config.LoggingConfig{Level: "debug", Format: "console"},
		Export:   config.ExportConfig{Title: "RELATÓRIO DE FATURAMENTO - CHECKMASTER AUTO"},
	}
}

// CleanupTestDB закрывает тестовую базу данных
func CleanupTestDB(db *gorm.DB) {
	if db != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

// ErrStoreUnavailable ошибка, которую возвращает FailingStore
var ErrStoreUnavailable = errors.New("хранилище недоступно")

// FailingStore хранилище, запись в которое можно сломать
type FailingStore struct {
	mu         sync.Mutex
	data       map[string][]byte
	FailWrites bool
	FailReads  bool
	failKeys   map[string]bool
}

// NewFailingStore создает пустое хранилище в памяти
func NewFailingStore() *FailingStore {
	return &FailingStore{data: make(map[string][]byte)}
}

func (s *FailingStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailReads {
		return nil, false, ErrStoreUnavailable
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *FailingStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites || s.failKeys[key] {
		return ErrStoreUnavailable
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *FailingStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return ErrStoreUnavailable
	}
	delete(s.data, key)
	return nil
}

// Put записывает сырое значение в обход флагов
func (s *FailingStore) Put(key string, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = []byte(value)
}

// FailKey ломает запись только для указанного ключа
func (s *FailingStore) FailKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failKeys == nil {
		s.failKeys = make(map[string]bool)
	}
	s.failKeys[key] = true
}

// Raw возвращает сырое значение ключа
func (s *FailingStore) Raw(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return string(v), ok
}
