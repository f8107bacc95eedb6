package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"checkmaster/config"
	"checkmaster/database"
	"checkmaster/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGormKV(t *testing.T) {
	ctx := context.Background()
	store := testutils.NewTestStore(t)

	t.Run("Отсутствующий ключ", func(t *testing.T) {
		v, found, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, v)
	})

	t.Run("Запись и перезапись", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "templates", []byte(`[1]`)))
		require.NoError(t, store.Set(ctx, "templates", []byte(`[1,2]`)))

		v, found, err := store.Get(ctx, "templates")
		require.NoError(t, err)
		assert.True(t, found)
		assert.JSONEq(t, `[1,2]`, string(v))
	})

	t.Run("Удаление", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "gone", []byte(`{}`)))
		require.NoError(t, store.Delete(ctx, "gone"))

		_, found, err := store.Get(ctx, "gone")
		require.NoError(t, err)
		assert.False(t, found)

		// Повторное удаление не ошибка
		assert.NoError(t, store.Delete(ctx, "gone"))
	})
}

func TestGormKVPrefixIsolation(t *testing.T) {
	ctx := context.Background()
	db := testutils.SetupTestDB(t)

	a := database.NewGormKV(db, "a_")
	b := database.NewGormKV(db, "b_")

	require.NoError(t, a.Set(ctx, "inspections", []byte(`["a"]`)))

	_, found, err := b.Get(ctx, "inspections")
	require.NoError(t, err)
	assert.False(t, found)

	var entry database.KVEntry
	require.NoError(t, db.First(&entry, "entry_key = ?", "a_inspections").Error)
	assert.Equal(t, `["a"]`, entry.Value)
}

func TestNewStore(t *testing.T) {
	cfg := testutils.TestConfig()
	db := testutils.SetupTestDB(t)

	store, err := database.NewStore(cfg, db)
	require.NoError(t, err)
	assert.IsType(t, &database.GormKV{}, store)

	_, err = database.NewStore(cfg, nil)
	assert.Error(t, err)

	cfg.Storage.Backend = "memcached"
	_, err = database.NewStore(cfg, db)
	assert.Error(t, err)
}

func TestConnectSQLite(t *testing.T) {
	cfg := testutils.TestConfig()
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "connect.db")
	core, logs := observer.New(zap.InfoLevel)

	db, err := database.Connect(cfg, zap.New(core))
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.Ping(db))
	assert.Equal(t, 1, logs.FilterField(zap.String("driver", "sqlite")).Len())
	assert.Equal(t, 2, logs.Len())

	cfg.Database.Driver = "oracle"
	_, err = database.Connect(cfg, nil)
	assert.Error(t, err)
}

func TestRedisKV(t *testing.T) {
	client := database.NewRedisClient(config.RedisConfig{Host: "localhost", Port: "6379", MaxConns: 2})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis недоступен, пропускаем тест")
	}

	store := database.NewRedisKV(client, "cm_test_")
	defer store.Delete(ctx, "templates")

	_, found, err := store.Get(ctx, "templates")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "templates", []byte(`[]`)))
	v, found, err := store.Get(ctx, "templates")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, string(v))
}
