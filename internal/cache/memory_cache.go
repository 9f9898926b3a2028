package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type memoryItem struct {
	value   []byte
	expires time.Time
}

// MemoryCache in-memory реализация SummaryCache для одиночного процесса и тестов
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	ttl   time.Duration
	cold  ColdStorage
	now   func() time.Time

	requests int64
	hits     int64
	misses   int64
	coldHits int64
}

// NewMemoryCache создаёт кеш; ttl == 0 означает отсутствие истечения
func NewMemoryCache(ttl time.Duration, cold ColdStorage) *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		cold:  cold,
		now:   time.Now,
	}
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	atomic.AddInt64(&m.requests, 1)

	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()

	if ok && (item.expires.IsZero() || m.now().Before(item.expires)) {
		atomic.AddInt64(&m.hits, 1)
		return item.value, nil
	}
	atomic.AddInt64(&m.misses, 1)

	if m.cold != nil {
		if val, err := m.cold.Load(ctx, key); err == nil {
			atomic.AddInt64(&m.coldHits, 1)
			_ = m.Set(ctx, key, val)
			return val, nil
		}
	}
	return nil, ErrCacheMiss
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte) error {
	item := memoryItem{value: append([]byte(nil), value...)}
	if m.ttl > 0 {
		item.expires = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Close() error { return nil }

func (m *MemoryCache) GetMetrics() CacheMetrics {
	return snapshot(&m.requests, &m.hits, &m.misses, &m.coldHits)
}
