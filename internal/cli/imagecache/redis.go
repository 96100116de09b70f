package imagecache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "elegora:img:"

// RedisCache хранит изображения в Redis; namespace отделяет разные леджеры.
type RedisCache struct {
	client    *redis.Client
	namespace string
}

var _ Cache = (*RedisCache)(nil)

// RedisConfig — параметры подключения.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

// NewRedisCache подключается к Redis и проверяет соединение.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewRedisCacheFromClient(client, cfg.Namespace), nil
}

// NewRedisCacheFromClient оборачивает готовый клиент.
func NewRedisCacheFromClient(client *redis.Client, namespace string) *RedisCache {
	return &RedisCache{client: client, namespace: namespace}
}

func (c *RedisCache) key(id uint64) string {
	return redisKeyPrefix + c.namespace + ":" + strconv.FormatUint(id, 10)
}

func (c *RedisCache) Put(ctx context.Context, id uint64, payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyImage
	}
	// без TTL: записи не удаляются автоматически
	return c.client.Set(ctx, c.key(id), payload, 0).Err()
}

func (c *RedisCache) Get(ctx context.Context, id uint64) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// IDs обходит ключи namespace через SCAN; ключи с нечисловым суффиксом пропускаются.
func (c *RedisCache) IDs(ctx context.Context) ([]uint64, error) {
	prefix := redisKeyPrefix + c.namespace + ":"
	var ids []uint64
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id, err := strconv.ParseUint(strings.TrimPrefix(iter.Val(), prefix), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (c *RedisCache) Close() error { return c.client.Close() }
