package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SummaryCache кеширует сводки декодирования реплеев.
// Ключ строится из CRC содержимого и режима декодирования, так что один и тот же
// файл, разобранный с другими опциями, получает отдельную запись.
//
// Использование:
//
//	key := cache.SummaryKey(replay.ContentCRC, "on-error/ignore-on-error")
//	data, err := c.Get(ctx, key)
//	if cache.IsCacheMiss(err) { ... }
//	err = c.Set(ctx, key, data)
type SummaryCache interface {
	// Get получает сводку по ключу.
	// Возвращает ErrCacheMiss если ключ не найден.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет сводку с TTL из конфигурации.
	Set(ctx context.Context, key string, value []byte) error

	// Delete удаляет ключ из кеша.
	Delete(ctx context.Context, key string) error

	// Close закрывает соединение с кешем.
	Close() error

	// GetMetrics возвращает метрики кеша.
	GetMetrics() CacheMetrics
}

// ColdStorage постоянное хранилище, из которого кеш дочитывает промахи.
type ColdStorage interface {
	// Load возвращает ErrCacheMiss если данных нет.
	Load(ctx context.Context, key string) ([]byte, error)
}

// CacheMetrics содержит метрики кеша.
type CacheMetrics struct {
	TotalRequests int64   `json:"total_requests"`
	CacheHits     int64   `json:"cache_hits"`
	CacheMisses   int64   `json:"cache_misses"`
	ColdHits      int64   `json:"cold_hits"`
	HitRatio      float64 `json:"hit_ratio"`
}

// Config содержит конфигурацию Redis кеша.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// SummaryKey строит ключ кеша для реплея
func SummaryKey(contentCRC uint32, mode string) string {
	return fmt.Sprintf("summary:%08x:%s", contentCRC, mode)
}

// Ошибки кеша
var (
	ErrCacheMiss = NewCacheError("cache miss")
	ErrClosed    = NewCacheError("cache closed")
)

// CacheError представляет ошибку кеша.
type CacheError struct {
	Message string
}

func (e *CacheError) Error() string {
	return e.Message
}

func NewCacheError(message string) *CacheError {
	return &CacheError{Message: message}
}

// IsCacheMiss проверяет, является ли ошибка промахом кеша.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
