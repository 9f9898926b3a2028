package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type coldMap map[string][]byte

func (c coldMap) Load(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c[key]; ok {
		return v, nil
	}
	return nil, ErrCacheMiss
}

func TestSummaryKey(t *testing.T) {
	assert.Equal(t, "summary:0000beef:always/never", SummaryKey(0xBEEF, "always/never"))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("hit and miss", func(t *testing.T) {
		c := NewMemoryCache(0, nil)
		_, err := c.Get(ctx, "a")
		assert.True(t, IsCacheMiss(err))

		require.NoError(t, c.Set(ctx, "a", []byte("1")))
		v, err := c.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), v)

		m := c.GetMetrics()
		assert.Equal(t, int64(2), m.TotalRequests)
		assert.InDelta(t, 0.5, m.HitRatio, 1e-9)
	})

	t.Run("expiry", func(t *testing.T) {
		now := time.Unix(1000, 0)
		c := NewMemoryCache(time.Minute, nil)
		c.now = func() time.Time { return now }

		require.NoError(t, c.Set(ctx, "a", []byte("1")))
		now = now.Add(2 * time.Minute)
		_, err := c.Get(ctx, "a")
		assert.True(t, IsCacheMiss(err), "запись с истёкшим TTL считается промахом")
	})

	t.Run("read-through", func(t *testing.T) {
		c := NewMemoryCache(0, coldMap{"a": []byte("cold")})
		v, err := c.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("cold"), v)

		v, err = c.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("cold"), v)
		assert.Equal(t, int64(1), c.GetMetrics().ColdHits, "второе чтение идёт из кеша")
	})

	t.Run("delete", func(t *testing.T) {
		c := NewMemoryCache(0, nil)
		require.NoError(t, c.Set(ctx, "a", []byte("1")))
		require.NoError(t, c.Delete(ctx, "a"))
		_, err := c.Get(ctx, "a")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(Config{Addr: "127.0.0.1:1"}, nil)
	assert.Error(t, err, "без сервера Redis конструктор возвращает ошибку")
}
