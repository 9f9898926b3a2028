package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/levelonedev/boxcars/internal/logging"
)

// RedisCache реализует SummaryCache поверх Redis.
// Промахи дочитываются из ColdStorage (Read-Through), если оно задано.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	cold   ColdStorage
	log    *logging.Logger

	requests int64
	hits     int64
	misses   int64
	coldHits int64
	closed   int32
}

// NewRedisCache подключается к Redis и проверяет соединение.
// cold может быть nil.
func NewRedisCache(cfg Config, cold ColdStorage) (*RedisCache, error) {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "boxcars:"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		MaxRetries:   1,
	})

	// Проверяем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := &RedisCache{
		client: rdb,
		ttl:    cfg.TTL,
		prefix: cfg.Prefix,
		cold:   cold,
		log:    logging.GetComponentLogger("cache"),
	}
	c.log.Info("Redis cache initialized: %s (ttl %v)", cfg.Addr, cfg.TTL)
	return c, nil
}

// Get получает сводку из Redis, при промахе обращается к ColdStorage.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if atomic.LoadInt32(&r.closed) == 1 {
		return nil, ErrClosed
	}
	atomic.AddInt64(&r.requests, 1)

	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == nil {
		atomic.AddInt64(&r.hits, 1)
		return val, nil
	}

	atomic.AddInt64(&r.misses, 1)
	if err != redis.Nil {
		r.log.Error("Redis Get error for key %s: %v", key, err)
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	if r.cold != nil {
		val, err := r.cold.Load(ctx, key)
		if err == nil {
			atomic.AddInt64(&r.coldHits, 1)
			// Прогреваем кеш для следующих запросов
			if err := r.Set(ctx, key, val); err != nil {
				r.log.Warn("Не удалось прогреть кеш для %s: %v", key, err)
			}
			return val, nil
		}
		if !IsCacheMiss(err) {
			r.log.Debug("Cold storage error for key %s: %v", key, err)
		}
	}
	return nil, ErrCacheMiss
}

// Set сохраняет сводку в Redis
func (r *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if atomic.LoadInt32(&r.closed) == 1 {
		return ErrClosed
	}
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		r.log.Error("Redis Set error for key %s: %v", key, err)
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// Delete удаляет ключ из кеша
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (r *RedisCache) Close() error {
	if !atomic.CompareAndSwapInt32(&r.closed, 0, 1) {
		return nil
	}
	if err := r.client.Close(); err != nil {
		r.log.Error("Error closing Redis connection: %v", err)
		return err
	}
	r.log.Info("Redis cache closed")
	return nil
}

// GetMetrics возвращает текущие метрики кеша
func (r *RedisCache) GetMetrics() CacheMetrics {
	return snapshot(&r.requests, &r.hits, &r.misses, &r.coldHits)
}

func snapshot(requests, hits, misses, coldHits *int64) CacheMetrics {
	m := CacheMetrics{
		TotalRequests: atomic.LoadInt64(requests),
		CacheHits:     atomic.LoadInt64(hits),
		CacheMisses:   atomic.LoadInt64(misses),
		ColdHits:      atomic.LoadInt64(coldHits),
	}
	if total := m.CacheHits + m.CacheMisses; total > 0 {
		m.HitRatio = float64(m.CacheHits) / float64(total)
	}
	return m
}
