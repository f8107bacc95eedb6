package database

import (
	"context"
	"fmt"
	"time"

	"checkmaster/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var Redis *redis.Client
var Ctx = context.Background()

// InitRedis инициализирует подключение к Redis
func InitRedis(cfg config.RedisConfig, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	Redis = NewRedisClient(cfg)

	// Проверяем подключение
	if err := Redis.Ping(Ctx).Err(); err != nil {
		return fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	log.Info("✅ Успешно подключено к Redis", zap.String("host", cfg.Host), zap.Int("db", cfg.DB))
	return nil
}

// NewRedisClient создает клиент Redis по настройкам
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.MaxConns,
		MinIdleConns: 2,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  300 * time.Second,
	})
}

// GetRedis возвращает экземпляр Redis клиента
func GetRedis() *redis.Client {
	return Redis
}

// RedisKV хранилище коллекций в Redis: одна строка на ключ, без TTL
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV создает хранилище поверх клиента Redis
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	return &RedisKV{client: client, prefix: prefix}
}

func (s *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения ключа %s из Redis: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("ошибка записи ключа %s в Redis: %w", key, err)
	}
	return nil
}

func (s *RedisKV) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("ошибка удаления ключа %s из Redis: %w", key, err)
	}
	return nil
}

// RateLimitHit увеличивает счетчик запросов в окне и возвращает его значение.
// TTL устанавливается только для первого запроса окна.
func RateLimitHit(ctx context.Context, client *redis.Client, key string, window time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}
