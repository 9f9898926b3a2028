package fstring

import (
	"errors"
	"testing"

	"github.com/levelonedev/boxcars/internal/bitstream"
	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFString_RoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		value string
		utf16 bool
	}{
		{"empty", "", false},
		{"ascii", "TAGame.Car_TA", false},
		{"latin1", "Café", false},
		{"utf16", "プレイヤー", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			size, _ := Encode(tc.value)
			assert.Equal(t, tc.utf16, size < 0)

			w := bitstream.NewWriter()
			Write(w, tc.value)

			r := bitstream.NewReader(w.Bytes())
			got, err := Read(r)
			require.NoError(t, err)
			assert.Equal(t, tc.value, got)
			assert.True(t, r.IsEmpty(), "строка должна быть прочитана полностью")
		})
	}
}

func TestFString_SizeTooLarge(t *testing.T) {
	w := bitstream.NewWriter()
	w.WriteI32(-1912602609)
	w.WriteBytes([]byte("abc"))

	_, err := Read(bitstream.NewReader(w.Bytes()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, decodeerr.ErrResourceLimit))
	assert.Contains(t, err.Error(), "unexpected size for string: -1912602609")
}

func TestFString_MinInt32(t *testing.T) {
	w := bitstream.NewWriter()
	w.WriteI32(-2147483648)

	_, err := Read(bitstream.NewReader(w.Bytes()))
	assert.True(t, errors.Is(err, decodeerr.ErrResourceLimit))
}
