package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVStore долговременное хранилище коллекций: один ключ хранит один JSON документ.
// Get возвращает found=false для отсутствующего ключа без ошибки.
type KVStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// KVEntry строка таблицы хранилища
type KVEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName указывает имя таблицы для GORM
func (KVEntry) TableName() string {
	return "kv_entries"
}

// GormKV хранилище коллекций в таблице реляционной БД
type GormKV struct {
	db     *gorm.DB
	prefix string
}

// NewGormKV создает хранилище поверх gorm. prefix добавляется к каждому ключу.
func NewGormKV(db *gorm.DB, prefix string) *GormKV {
	return &GormKV{db: db, prefix: prefix}
}

func (s *GormKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", s.prefix+key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения ключа %s: %w", key, err)
	}
	return []byte(entry.Value), true, nil
}

func (s *GormKV) Set(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{Key: s.prefix + key, Value: string(value), UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("ошибка записи ключа %s: %w", key, err)
	}
	return nil
}

func (s *GormKV) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("entry_key = ?", s.prefix+key).Delete(&KVEntry{}).Error; err != nil {
		return fmt.Errorf("ошибка удаления ключа %s: %w", key, err)
	}
	return nil
}
