package services

import (
	"context"
	"encoding/json"
	"fmt"

	"checkmaster/database"
	"checkmaster/models"

	"go.uber.org/zap"
)

// Ключи коллекций в хранилище
const (
	KeyInspections    = "inspections"
	KeyTemplates      = "templates"
	KeyCompanies      = "companies"
	KeyCurrentCompany = "current_company"
)

// collection коллекция записей, хранимая одним JSON документом под ключом
type collection[T any] struct {
	store  database.KVStore
	key    string
	logger *zap.Logger
}

func newCollection[T any](store database.KVStore, key string, logger *zap.Logger) collection[T] {
	return collection[T]{store: store, key: key, logger: logger}
}

// load читает коллекцию целиком. found=false, если ключ отсутствует.
// Записи декодируются по одной: нечитаемая запись пропускается, а
// поврежденный документ целиком дает пустую коллекцию.
func (c collection[T]) load(ctx context.Context) (items []T, found bool, err error) {
	items, found, _, err = c.decode(ctx)
	return items, found, err
}

// loadForUpdate читает коллекцию перед перезаписью. Если документ
// поврежден, исходные байты сначала копируются под ключ <key>.corrupt,
// чтобы запись не уничтожила нечитаемые данные.
func (c collection[T]) loadForUpdate(ctx context.Context) ([]T, bool, error) {
	items, found, raw, err := c.decode(ctx)
	if err != nil {
		return nil, false, err
	}
	if raw == nil {
		return items, found, nil
	}
	backupKey := c.key + ".corrupt"
	if err := c.store.Set(ctx, backupKey, raw); err != nil {
		return nil, false, fmt.Errorf("%w: не удалось сохранить копию %s: %v", models.ErrCorruptCollection, backupKey, err)
	}
	c.logger.Warn("Копия поврежденной коллекции сохранена перед записью",
		zap.String("key", c.key),
		zap.String("backup_key", backupKey),
		zap.Int("kept", len(items)))
	return items, found, nil
}

// decode возвращает исходный документ в damaged, если хотя бы одна запись
// не прочиталась
func (c collection[T]) decode(ctx context.Context) (items []T, found bool, damaged []byte, err error) {
	data, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, false, nil, err
	}
	if !found {
		return []T{}, false, nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		c.logger.Warn("Поврежденные данные коллекции, используется пустой список",
			zap.String("key", c.key),
			zap.Error(fmt.Errorf("%w: %v", models.ErrCorruptCollection, err)))
		return []T{}, true, data, nil
	}

	items = make([]T, 0, len(raws))
	for i, raw := range raws {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			c.logger.Warn("Пропущена нечитаемая запись коллекции",
				zap.String("key", c.key),
				zap.Int("index", i),
				zap.Error(fmt.Errorf("%w: %v", models.ErrCorruptCollection, err)))
			damaged = data
			continue
		}
		items = append(items, item)
	}
	return items, true, damaged, nil
}

// save заменяет коллекцию целиком
func (c collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("ошибка сериализации коллекции %s: %w", c.key, err)
	}
	if err := c.store.Set(ctx, c.key, data); err != nil {
		return fmt.Errorf("ошибка сохранения коллекции %s: %w", c.key, err)
	}
	return nil
}

// loadDocument читает одиночный JSON документ. Отсутствующий или
// поврежденный документ дает found=false.
func loadDocument[T any](ctx context.Context, store database.KVStore, key string, logger *zap.Logger) (doc T, found bool, err error) {
	data, found, err := store.Get(ctx, key)
	if err != nil || !found {
		return doc, false, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("Поврежденный документ, используется значение по умолчанию",
			zap.String("key", key), zap.Error(err))
		var zero T
		return zero, false, nil
	}
	return doc, true, nil
}

func saveDocument[T any](ctx context.Context, store database.KVStore, key string, doc T) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("ошибка сериализации документа %s: %w", key, err)
	}
	if err := store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("ошибка сохранения документа %s: %w", key, err)
	}
	return nil
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
