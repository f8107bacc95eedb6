package database

import (
	"fmt"

	"checkmaster/config"

	"gorm.io/gorm"
)

// NewStore выбирает хранилище коллекций по настройке STORAGE_BACKEND
func NewStore(cfg *config.Config, db *gorm.DB) (KVStore, error) {
	switch cfg.Storage.Backend {
	case "database":
		if db == nil {
			return nil, fmt.Errorf("хранилище database требует подключения к БД")
		}
		return NewGormKV(db, cfg.Storage.KeyPrefix), nil
	case "redis":
		if Redis == nil {
			return nil, fmt.Errorf("хранилище redis требует подключения к Redis")
		}
		return NewRedisKV(Redis, cfg.Storage.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("неизвестное хранилище: %s", cfg.Storage.Backend)
	}
}
