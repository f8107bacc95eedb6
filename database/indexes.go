package database

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// DatabaseIndex представляет индекс базы данных
type DatabaseIndex struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

// StorageIndexes индексы таблицы хранилища коллекций
var StorageIndexes = []DatabaseIndex{
	{
		Name:    "idx_kv_entries_updated_at",
		Table:   "kv_entries",
		Columns: []string{"updated_at"},
	},
}

// CreateStorageIndexes создает индексы хранилища. Ошибка одного индекса
// не прерывает создание остальных, ошибки возвращаются вместе.
func CreateStorageIndexes(db *gorm.DB) error {
	var errs error
	for _, index := range StorageIndexes {
		if err := CreateIndex(db, index); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("индекс %s: %w", index.Name, err))
		}
	}
	return errs
}

// CreateIndex создает отдельный B-tree индекс
func CreateIndex(db *gorm.DB, index DatabaseIndex) error {
	uniqueStr := ""
	if index.Unique {
		uniqueStr = "UNIQUE "
	}

	sql := fmt.Sprintf(
		"CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		uniqueStr, index.Name, index.Table, strings.Join(index.Columns, ", "),
	)
	return db.Exec(sql).Error
}
