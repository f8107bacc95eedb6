package database

import (
	"database/sql"
	"fmt"

	"checkmaster/config"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CreateDatabaseIfNotExists создает базу данных PostgreSQL, если она не существует
func CreateDatabaseIfNotExists(cfg config.DatabaseConfig, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	// Подключаемся к PostgreSQL без указания конкретной БД (к postgres по умолчанию)
	adminDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.SSLMode)

	db, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return fmt.Errorf("не удалось подключиться к PostgreSQL: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("не удалось проверить подключение к PostgreSQL: %w", err)
	}

	var exists bool
	query := "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1);"
	if err := db.QueryRow(query, cfg.Name).Scan(&exists); err != nil {
		return fmt.Errorf("ошибка при проверке существования базы данных: %w", err)
	}

	if exists {
		log.Info("✅ База данных уже существует", zap.String("name", cfg.Name))
		return nil
	}

	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %s;", cfg.Name)); err != nil {
		return fmt.Errorf("не удалось создать базу данных '%s': %w", cfg.Name, err)
	}

	log.Info("✅ База данных успешно создана", zap.String("name", cfg.Name))
	return nil
}

// Connect открывает подключение к БД по настройкам и выполняет автомиграцию
func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.GetDatabaseDSN())
	case "postgres":
		if err := CreateDatabaseIfNotExists(cfg.Database, log); err != nil {
			return nil, err
		}
		dialector = postgres.Open(cfg.GetDatabaseDSN())
	default:
		return nil, fmt.Errorf("неподдерживаемый драйвер БД: %s", cfg.Database.Driver)
	}

	logLevel := logger.Warn
	if cfg.App.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	log.Info("✅ Успешно подключено к БД", zap.String("driver", cfg.Database.Driver))

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("ошибка автомиграции: %w", err)
	}
	log.Info("✅ Автомиграция моделей выполнена успешно")

	return db, nil
}

// AutoMigrate выполняет автомиграцию таблиц хранилища
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return err
	}
	if err := CreateStorageIndexes(db); err != nil {
		return err
	}
	return nil
}

// Ping проверяет доступность БД
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close закрывает подключение к БД
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
