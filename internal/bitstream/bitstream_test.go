package bitstream

import (
	"errors"
	"math"
	"testing"

	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_BitOrder(t *testing.T) {
	// 0b1010_0101: младший бит читается первым
	r := NewReader([]byte{0xA5})

	expected := []bool{true, false, true, false, false, true, false, true}
	for i, want := range expected {
		got, err := r.ReadBit()
		require.NoError(t, err)
		assert.Equal(t, want, got, "бит %d", i)
	}
	assert.True(t, r.IsEmpty())
}

func TestReader_ReadBitsAcrossBytes(t *testing.T) {
	r := NewReader([]byte{0xFF, 0x01, 0x80})

	v, err := r.ReadBits(4)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xF), v)

	v, err = r.ReadBits(8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1F), v, "4 старших бита 0xFF и 4 младших 0x01")

	assert.Equal(t, int64(12), r.Position())
	assert.Equal(t, int64(12), r.Remaining())
}

func TestReader_FastAndSlowPathsAgree(t *testing.T) {
	data := []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0, 0x11, 0x22, 0x33}

	for offset := uint(0); offset < 16; offset++ {
		for n := uint(1); n <= 64 && uint64(offset+n) <= uint64(len(data))*8; n++ {
			fast := NewReader(data)
			require.NoError(t, fast.SkipBits(uint64(offset)))
			got, err := fast.ReadBits(n)
			require.NoError(t, err)

			slow := NewReader(data)
			require.NoError(t, slow.SkipBits(uint64(offset)))
			var want uint64
			for i := uint(0); i < n; i++ {
				b, err := slow.ReadBit()
				require.NoError(t, err)
				if b {
					want |= 1 << i
				}
			}
			assert.Equal(t, want, got, "offset=%d n=%d", offset, n)
		}
	}
}

func TestReader_TruncatedDoesNotAdvance(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	require.NoError(t, r.SkipBits(3))

	_, err := r.ReadBits(14)
	require.Error(t, err)
	assert.True(t, errors.Is(err, decodeerr.ErrTruncated))

	var de *decodeerr.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, int64(3), de.BitOffset, "ошибка указывает на начало неудачного чтения")
	assert.Equal(t, int64(3), r.Position(), "позиция не должна сдвигаться")

	_, err = r.ReadBytes(2)
	assert.True(t, errors.Is(err, decodeerr.ErrTruncated))
}

func TestReader_ReadBitsMax(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteBitsMax(700, 1024))
	require.NoError(t, w.WriteBitsMax(4, 5))
	require.NoError(t, w.WriteBitsMax(0, 5))
	assert.Equal(t, int64(10+3+3), w.Len())

	r := NewReader(w.Bytes())
	v, err := r.ReadBitsMax(1024)
	require.NoError(t, err)
	assert.Equal(t, uint64(700), v)

	v, err = r.ReadBitsMax(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), v)

	v, err = r.ReadBitsMax(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	assert.Equal(t, 10, MinBitsMax(1024))
	assert.Equal(t, 2, MinBitsMax(5))
	assert.Equal(t, 0, MinBitsMax(1))
}

func TestReader_ReadBitsMaxTruncated(t *testing.T) {
	r := NewReader([]byte{0xFF})
	require.NoError(t, r.SkipBits(4))

	_, err := r.ReadBitsMax(1024)
	require.Error(t, err)
	assert.True(t, errors.Is(err, decodeerr.ErrTruncated))
	assert.Equal(t, int64(4), r.Position())

	t.Run("shortfall beyond minimum width", func(t *testing.T) {
		// для max 5 после двух нулевых бит нужен третий
		r := NewReader([]byte{0x00})
		require.NoError(t, r.SkipBits(6))

		_, err := r.ReadBitsMax(5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "need at least 3 bits, 2 remaining")
		assert.Equal(t, int64(6), r.Position())
	})
}

func TestReader_TypedValues(t *testing.T) {
	w := NewWriter()
	w.WriteBit(true)
	w.WriteU64(76561198122624102)
	w.WriteI32(-42)
	w.WriteF32(3.5)
	w.WriteBytes([]byte("abc"))
	w.WriteI64(math.MinInt64)

	r := NewReader(w.Bytes())
	b, err := r.ReadBit()
	require.NoError(t, err)
	assert.True(t, b)

	id, err := r.ReadU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(76561198122624102), id)

	i, err := r.ReadI32()
	require.NoError(t, err)
	assert.Equal(t, int32(-42), i)

	f, err := r.ReadF32()
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), f)

	raw, err := r.ReadBytes(3)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), raw)

	i64, err := r.ReadI64()
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), i64)
}

func TestReader_PeekDoesNotAdvance(t *testing.T) {
	r := NewReader([]byte{0xAB})
	v, err := r.PeekBits(4)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xB), v)
	assert.Equal(t, int64(0), r.Position())
}

func TestReader_EnsureCount(t *testing.T) {
	r := NewReader(make([]byte, 4)) // 32 бита

	assert.NoError(t, r.EnsureCount(3, 10, "actors"))
	assert.NoError(t, r.EnsureCount(0, 10, "actors"))

	err := r.EnsureCount(4, 10, "actors")
	require.Error(t, err)
	assert.True(t, errors.Is(err, decodeerr.ErrResourceLimit))

	err = r.EnsureCount(math.MaxUint32, 1, "frames")
	assert.True(t, errors.Is(err, decodeerr.ErrResourceLimit))
}

func TestReader_ReadBytesUnaligned(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0x5, 3)
	w.WriteBytes([]byte{0xDE, 0xAD})

	r := NewReader(w.Bytes())
	_, err := r.ReadBits(3)
	require.NoError(t, err)
	got, err := r.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD}, got)
}
