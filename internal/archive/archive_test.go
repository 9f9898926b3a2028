package archive

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupArchive(t *testing.T) *Archive {
	a, err := OpenInMemory()
	require.NoError(t, err, "Не удалось открыть архив")
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchive_StoreAndLoad(t *testing.T) {
	a := setupArchive(t)

	data := bytes.Repeat([]byte("TAGame.Replay_Soccar_TA"), 200)
	id, existed, err := a.Store(data, 0xCAFEBABE, []byte(`{"frames":12}`))
	require.NoError(t, err)
	assert.False(t, existed)
	assert.NotEqual(t, uuid.Nil, id)

	got, entry, err := a.Load(id)
	require.NoError(t, err)
	assert.Equal(t, data, got, "данные должны распаковываться без изменений")
	assert.Equal(t, uint32(0xCAFEBABE), entry.ContentCRC)
	assert.Equal(t, len(data), entry.RawSize)
	assert.Less(t, entry.StoredSize, entry.RawSize, "повторяющиеся данные должны сжиматься")
	assert.JSONEq(t, `{"frames":12}`, string(entry.Summary))
}

func TestArchive_DeduplicatesByCRC(t *testing.T) {
	a := setupArchive(t)

	first, _, err := a.Store([]byte("replay"), 7, nil)
	require.NoError(t, err)
	second, existed, err := a.Store([]byte("replay"), 7, nil)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, first, second)

	id, ok, err := a.FindByCRC(7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, first, id)

	_, ok, err = a.FindByCRC(8)
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := a.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestArchive_Delete(t *testing.T) {
	a := setupArchive(t)

	id, _, err := a.Store([]byte("replay"), 1, nil)
	require.NoError(t, err)
	require.NoError(t, a.Delete(id))

	_, _, err = a.Load(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, a.Delete(id), ErrNotFound)

	_, ok, err := a.FindByCRC(1)
	require.NoError(t, err)
	assert.False(t, ok, "индекс CRC удаляется вместе с записью")
}

func TestArchive_Closed(t *testing.T) {
	a, err := OpenInMemory()
	require.NoError(t, err)
	require.NoError(t, a.Close())
	assert.NoError(t, a.Close(), "повторное закрытие безопасно")

	_, _, err = a.Store([]byte("x"), 1, nil)
	assert.Error(t, err)
}
