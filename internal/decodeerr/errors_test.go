package decodeerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	e := At(Unresolvable, 130, "stream id %d is not in net cache %d", 9, 2).
		WithFrame(4).
		WithActor(7).
		WithClass("TAGame.Car_TA").
		WithAttribute("TAGame.Car_TA:ReplicatedBoostAmount")

	assert.Equal(t,
		"unresolvable reference: stream id 9 is not in net cache 2 "+
			"(frame 4, bit offset 130, actor 7, class TAGame.Car_TA, attribute TAGame.Car_TA:ReplicatedBoostAmount)",
		e.Error())
}

func TestError_ContextIsSetOnce(t *testing.T) {
	e := At(Truncated, 10, "short").WithOffset(99).WithFrame(1).WithFrame(2).WithActor(3).WithActor(4)
	assert.Equal(t, int64(10), e.BitOffset, "внутреннее смещение не перезаписывается")
	assert.Equal(t, 1, e.Frame)
	require.NotNil(t, e.ActorID)
	assert.Equal(t, int32(3), *e.ActorID)
}

func TestError_IsAndAs(t *testing.T) {
	e := New(ResourceLimit, "list of size %d is too large", 1<<30)
	wrapped := fmt.Errorf("body: %w", e)

	assert.True(t, errors.Is(wrapped, ErrResourceLimit))
	assert.False(t, errors.Is(wrapped, ErrIntegrity))
	assert.Equal(t, ResourceLimit, CategoryOf(wrapped))
	assert.Same(t, e, As(wrapped, Integrity))

	plain := errors.New("boom")
	got := As(plain, Integrity)
	assert.Equal(t, Integrity, got.Category)
	assert.ErrorIs(t, got, plain)
	assert.Equal(t, Category(0), CategoryOf(plain))
	assert.Nil(t, As(nil, Integrity))
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "insufficient data", Truncated.String())
	assert.Equal(t, "format integrity", Integrity.String())
	assert.Equal(t, "unknown", Category(0).String())
}
