package network

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/levelonedev/boxcars/internal/attributes"
	"github.com/levelonedev/boxcars/internal/bitstream"
	"github.com/levelonedev/boxcars/internal/classes"
	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/levelonedev/boxcars/internal/netcache"
	"github.com/levelonedev/boxcars/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boostAmount = "TAGame.Car_TA:ReplicatedBoostAmount"

var (
	current = version.New(868, 22, 7)
	legacy  = version.New(868, 12, 0)
)

var testObjects = []string{
	"Engine.Actor",                        // 0
	"Engine.Actor:bHidden",                // 1
	"TAGame.RBActor_TA",                   // 2
	"TAGame.RBActor_TA:ReplicatedRBState", // 3
	"TAGame.Car_TA",                       // 4
	boostAmount,                           // 5
	"Archetypes.Car.Car_Default",          // 6
	"TAGame.VehiclePickup_Boost_TA",       // 7
}

// Кеш машины: 0 - bHidden, 1 - RBState, 3 - BoostAmount; id 2 не объявлен
var testCache = []netcache.Declaration{
	{ClassID: 0, CacheID: 1, Properties: []netcache.PropertyMapping{{ObjectID: 1, StreamID: 0}}},
	{ClassID: 2, ParentID: 1, CacheID: 2, Properties: []netcache.PropertyMapping{{ObjectID: 3, StreamID: 1}}},
	{ClassID: 4, ParentID: 2, CacheID: 3, Properties: []netcache.PropertyMapping{{ObjectID: 5, StreamID: 3}}},
	{ClassID: 7, ParentID: 1, CacheID: 4},
}

func testKinds(name string) attributes.Kind {
	if name == boostAmount {
		return attributes.KindByte
	}
	return attributes.KindOf(name)
}

func testTables(v version.Version, data []byte, frames int) *Tables {
	return &Tables{
		Classes: []classes.ClassIndex{
			{Name: "Engine.Actor", ID: 0},
			{Name: "TAGame.RBActor_TA", ID: 2},
			{Name: "TAGame.Car_TA", ID: 4},
			{Name: "TAGame.VehiclePickup_Boost_TA", ID: 7},
		},
		Objects:     testObjects,
		Names:       []string{"Player 1"},
		NetCache:    testCache,
		Version:     v,
		NetworkData: data,
		FrameCount:  frames,
	}
}

func testOptions() Options {
	return Options{Kinds: testKinds}
}

// streamBuilder пишет кадры в формате сетевого потока
type streamBuilder struct {
	t      *testing.T
	w      *bitstream.Writer
	v      version.Version
	codecs *attributes.Table
}

func newStream(t *testing.T, v version.Version) *streamBuilder {
	return &streamBuilder{t: t, w: bitstream.NewWriter(), v: v, codecs: attributes.Builtin().Resolve(v)}
}

func (b *streamBuilder) header(time, delta float32) *streamBuilder {
	b.w.WriteF32(time)
	b.w.WriteF32(delta)
	if b.v.AtLeast(sinceHighlights) {
		b.w.WriteBits(0, highlightBits)
	}
	return b
}

func (b *streamBuilder) count(n uint32) *streamBuilder {
	b.w.WriteU32(n)
	return b
}

func (b *streamBuilder) actor(id int32) *streamBuilder {
	require.NoError(b.t, b.w.WriteBitsMax(uint64(id), DefaultMaxChannels+1))
	return b
}

// car создаёт машину с нулевой начальной траекторией
func (b *streamBuilder) car(id int32) *streamBuilder {
	b.actor(id)
	b.w.WriteBit(true)
	if b.v.AtLeast(sinceNameID) {
		b.w.WriteI32(0)
	}
	b.w.WriteBit(false)
	b.w.WriteI32(6)
	b.value(attributes.Location{})
	b.value(attributes.Rotation{})
	return b
}

func (b *streamBuilder) reopen(id int32) *streamBuilder {
	b.actor(id)
	b.w.WriteBit(false)
	return b
}

func (b *streamBuilder) attr(stream uint64, v attributes.Value) *streamBuilder {
	return b.attrMax(stream, 4, v)
}

// attrMax пишет атрибут с id потока в диапазоне [0, max)
func (b *streamBuilder) attrMax(stream, max uint64, v attributes.Value) *streamBuilder {
	b.w.WriteBit(true)
	require.NoError(b.t, b.w.WriteBitsMax(stream, max))
	b.value(v)
	return b
}

func (b *streamBuilder) value(v attributes.Value) {
	require.NoError(b.t, b.codecs.Encode(b.w, v))
}

func (b *streamBuilder) end() *streamBuilder {
	b.w.WriteBit(false)
	return b
}

func (b *streamBuilder) bytes() []byte { return b.w.Bytes() }

// scenarioStream: кадр 0 создаёт актор 7 (машина), кадр 1 ставит буст 85 и удаляет его
func scenarioStream(t *testing.T) []byte {
	b := newStream(t, current)
	b.header(0, 0).count(1).car(7).count(0).count(0)
	b.header(0.03, 0.03).count(0).count(1).actor(7).attr(3, attributes.Byte(85)).end().count(1).actor(7)
	return b.bytes()
}

func TestDecode_SpawnUpdateDelete(t *testing.T) {
	res, err := Decode(testTables(current, scenarioStream(t), 2), testOptions())
	require.NoError(t, err)
	require.Len(t, res.Frames, 2)

	f0 := res.Frames[0]
	require.Len(t, f0.Spawns, 1)
	sp := f0.Spawns[0]
	assert.Equal(t, int32(7), sp.ActorID)
	assert.True(t, sp.New)
	assert.Equal(t, "TAGame.Car_TA", sp.ClassName)
	assert.Equal(t, "Player 1", sp.Name)
	require.NotNil(t, sp.Location)
	assert.Equal(t, attributes.Vector3i{}, *sp.Location)
	require.NotNil(t, sp.Rotation, "машина передаёт поворот")

	f1 := res.Frames[1]
	assert.InDelta(t, 0.03, f1.Time, 1e-6)
	require.Len(t, f1.Updates, 1)
	assert.Equal(t, []UpdatedAttribute{{
		StreamID: 3,
		Name:     boostAmount,
		Kind:     attributes.KindByte,
		Value:    attributes.Byte(85),
	}}, f1.Updates[0].Attributes)
	assert.Equal(t, []int32{7}, f1.Deletes)

	assert.Empty(t, res.Live, "актор 7 удалён")
	assert.Empty(t, res.Diagnostics)
}

func TestFrameDecoder_LiveTable(t *testing.T) {
	tables := testTables(current, scenarioStream(t), 2)
	s, err := NewSession(tables, testOptions())
	require.NoError(t, err)

	fd := NewFrameDecoder(s, testOptions())
	r := bitstream.NewReader(tables.NetworkData)

	_, err = fd.Decode(r, 0)
	require.NoError(t, err)
	st, ok := fd.Actor(7)
	require.True(t, ok)
	assert.Equal(t, "TAGame.Car_TA", st.ClassName)
	assert.Equal(t, []int32{7}, fd.Live())

	_, err = fd.Decode(r, 1)
	require.NoError(t, err)
	_, ok = fd.Actor(7)
	assert.False(t, ok)
	assert.Empty(t, fd.Live())
}

func TestDecode_Idempotent(t *testing.T) {
	data := scenarioStream(t)

	first, err := Decode(testTables(current, data, 2), testOptions())
	require.NoError(t, err)
	second, err := Decode(testTables(current, data, 2), testOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDecode_TruncatedAttribute(t *testing.T) {
	b := newStream(t, current)
	b.header(0, 0).count(1).car(7).count(0).count(0)
	b.header(0.03, 0.03).count(0).count(1).actor(7)
	b.w.WriteBit(true)
	require.NoError(t, b.w.WriteBitsMax(3, 4))
	offset := b.w.Len()

	_, err := Decode(testTables(current, b.bytes(), 2), testOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, decodeerr.ErrTruncated))

	var de *decodeerr.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1, de.Frame)
	assert.Equal(t, offset, de.BitOffset, "смещение указывает на начало значения")
	require.NotNil(t, de.ActorID)
	assert.Equal(t, int32(7), *de.ActorID)
	assert.Equal(t, boostAmount, de.Attribute)
	assert.Equal(t, "TAGame.Car_TA", de.ClassName)
}

func TestDecode_ResourceLimits(t *testing.T) {
	t.Run("frame count", func(t *testing.T) {
		_, err := Decode(testTables(current, scenarioStream(t), 1<<30), testOptions())
		require.Error(t, err)
		assert.True(t, errors.Is(err, decodeerr.ErrResourceLimit))
		assert.Contains(t, err.Error(), "too many frames to decode")
	})

	t.Run("max frames option", func(t *testing.T) {
		opts := testOptions()
		opts.MaxFrames = 1
		_, err := Decode(testTables(current, scenarioStream(t), 2), opts)
		assert.True(t, errors.Is(err, decodeerr.ErrResourceLimit))
	})

	t.Run("fuzzed counts", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 200; i++ {
			count := rng.Uint32() | 1<<16
			slot := i % 3

			b := newStream(t, current)
			b.header(0, 0)
			for j := 0; j < 3; j++ {
				if j == slot {
					b.count(count)
				} else {
					b.count(0)
				}
			}
			b.w.WriteU64(rng.Uint64())

			_, err := Decode(testTables(current, b.bytes(), 1), testOptions())
			require.Error(t, err, "count %d в позиции %d", count, slot)
			assert.True(t, errors.Is(err, decodeerr.ErrResourceLimit), "count %d: %v", count, err)
		}
	})

	t.Run("highlight count", func(t *testing.T) {
		w := bitstream.NewWriter()
		w.WriteF32(0)
		w.WriteF32(0)
		w.WriteBits(255, highlightBits)
		w.WriteU64(0)
		w.WriteU64(0)
		w.WriteU64(0)

		_, err := Decode(testTables(current, w.Bytes(), 1), testOptions())
		assert.True(t, errors.Is(err, decodeerr.ErrResourceLimit), "ошибка: %v", err)
	})
}

func TestDecode_UnresolvableReferences(t *testing.T) {
	t.Run("update of unknown actor", func(t *testing.T) {
		b := newStream(t, current)
		b.header(0, 0).count(0).count(1).actor(9).end().count(0)

		_, err := Decode(testTables(current, b.bytes(), 1), testOptions())
		require.Error(t, err)
		assert.True(t, errors.Is(err, decodeerr.ErrUnresolvable))

		var de *decodeerr.Error
		require.True(t, errors.As(err, &de))
		require.NotNil(t, de.ActorID)
		assert.Equal(t, int32(9), *de.ActorID)
		assert.Equal(t, 0, de.Frame)
	})

	t.Run("undeclared stream id", func(t *testing.T) {
		b := newStream(t, current)
		b.header(0, 0).count(1).car(7).count(1).actor(7).attr(2, attributes.Byte(1)).end().count(0)

		_, err := Decode(testTables(current, b.bytes(), 1), testOptions())
		require.Error(t, err)
		assert.True(t, errors.Is(err, decodeerr.ErrUnresolvable))
		assert.Contains(t, err.Error(), "stream id 2 is not in net cache 3")
	})

	t.Run("object out of range", func(t *testing.T) {
		b := newStream(t, current)
		b.header(0, 0).count(1).actor(3)
		b.w.WriteBit(true)
		b.w.WriteI32(0)
		b.w.WriteBit(false)
		b.w.WriteI32(99)
		b.count(0).count(0)

		_, err := Decode(testTables(current, b.bytes(), 1), testOptions())
		require.Error(t, err)
		assert.True(t, errors.Is(err, decodeerr.ErrUnresolvable))
		assert.Contains(t, err.Error(), "object id of 99 exceeds range")
	})

	t.Run("reopen of unknown actor", func(t *testing.T) {
		b := newStream(t, current)
		b.header(0, 0).count(1).reopen(4).count(0).count(0)

		_, err := Decode(testTables(current, b.bytes(), 1), testOptions())
		assert.True(t, errors.Is(err, decodeerr.ErrUnresolvable))
	})
}

func TestDecode_MaxInt32StreamID(t *testing.T) {
	wide := append([]netcache.Declaration(nil), testCache...)
	wide[2] = netcache.Declaration{ClassID: 4, ParentID: 2, CacheID: 3,
		Properties: []netcache.PropertyMapping{{ObjectID: 5, StreamID: math.MaxInt32}}}
	const streams = uint64(math.MaxInt32) + 1

	tables := func(data []byte) *Tables {
		tb := testTables(current, data, 1)
		tb.NetCache = wide
		return tb
	}

	t.Run("declared", func(t *testing.T) {
		b := newStream(t, current)
		b.header(0, 0).count(1).car(7).count(1).actor(7).attrMax(math.MaxInt32, streams, attributes.Byte(85)).end().count(0)

		res, err := Decode(tables(b.bytes()), testOptions())
		require.NoError(t, err)
		require.Len(t, res.Frames[0].Updates, 1)
		assert.Equal(t, boostAmount, res.Frames[0].Updates[0].Attributes[0].Name)
	})

	t.Run("undeclared", func(t *testing.T) {
		b := newStream(t, current)
		b.header(0, 0).count(1).car(7).count(1).actor(7).attrMax(2, streams, attributes.Boolean(true)).end().count(0)

		_, err := Decode(tables(b.bytes()), testOptions())
		require.Error(t, err, "необъявленный id потока не должен совпасть с объявленным")
		assert.True(t, errors.Is(err, decodeerr.ErrUnresolvable))
		assert.Contains(t, err.Error(), "stream id 2 is not in net cache 3")
	})
}

func TestDecode_CustomTrajectoryCodec(t *testing.T) {
	reg := attributes.Builtin()
	builtin := reg.Codecs(attributes.KindLocation)[0]
	reg.Register(attributes.Codec{
		Kind:  attributes.KindLocation,
		Since: builtin.Since,
		Decode: func(r *bitstream.Reader, v version.Version) (attributes.Value, error) {
			return attributes.Int(1), nil
		},
		Encode: builtin.Encode,
	})

	opts := testOptions()
	opts.Registry = reg
	_, err := Decode(testTables(current, scenarioStream(t), 2), opts)
	require.Error(t, err, "кодек с чужим типом значения не должен ронять декодер")
	assert.True(t, errors.Is(err, decodeerr.ErrIntegrity))
	assert.Contains(t, err.Error(), "location codec returned attributes.Int")
}

func TestDecode_DeleteOfDeadActor(t *testing.T) {
	stream := func(t *testing.T) []byte {
		b := newStream(t, current)
		b.header(0, 0).count(0).count(0).count(1).actor(5)
		return b.bytes()
	}

	t.Run("lenient", func(t *testing.T) {
		res, err := Decode(testTables(current, stream(t), 1), testOptions())
		require.NoError(t, err)
		assert.Equal(t, []int32{5}, res.Frames[0].Deletes)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, int32(5), res.Diagnostics[0].ActorID)
		assert.Equal(t, 0, res.Diagnostics[0].Frame)
	})

	t.Run("strict", func(t *testing.T) {
		opts := testOptions()
		opts.StrictDeletes = true
		_, err := Decode(testTables(current, stream(t), 1), opts)
		require.Error(t, err)
		assert.True(t, errors.Is(err, decodeerr.ErrUnresolvable))
	})
}

func TestDecode_RespawnReplacesState(t *testing.T) {
	b := newStream(t, current)
	b.header(0, 0).count(1).car(7).count(1).actor(7).attr(3, attributes.Byte(40)).end().count(0)
	b.header(0.03, 0.03).count(2).car(7).reopen(7).count(0).count(0)

	tables := testTables(current, b.bytes(), 2)
	s, err := NewSession(tables, testOptions())
	require.NoError(t, err)
	fd := NewFrameDecoder(s, testOptions())
	r := bitstream.NewReader(tables.NetworkData)

	_, err = fd.Decode(r, 0)
	require.NoError(t, err)
	st, _ := fd.Actor(7)
	v, ok := st.Attribute(boostAmount)
	require.True(t, ok)
	assert.Equal(t, attributes.Byte(40), v)

	f, err := fd.Decode(r, 1)
	require.NoError(t, err)
	require.Len(t, f.Spawns, 2)
	assert.False(t, f.Spawns[1].New)
	assert.Equal(t, "TAGame.Car_TA", f.Spawns[1].ClassName)

	st, _ = fd.Actor(7)
	assert.Empty(t, st.Attributes, "новое состояние не наследует старые значения")
}

func TestDecode_LegacyVersion(t *testing.T) {
	b := newStream(t, legacy)
	b.header(0, 0).count(1).car(7).count(1).actor(7).attr(3, attributes.Byte(12)).end().count(0)

	res, err := Decode(testTables(legacy, b.bytes(), 0), testOptions())
	require.NoError(t, err)
	require.Len(t, res.Frames, 1, "без объявленного числа кадров читаем до конца буфера")
	assert.Nil(t, res.Frames[0].Spawns[0].NameID)
	assert.Nil(t, res.Frames[0].Highlights)
	assert.Equal(t, []int32{7}, res.Live)
}

func TestDecode_Highlights(t *testing.T) {
	w := bitstream.NewWriter()
	w.WriteF32(0)
	w.WriteF32(0)
	w.WriteBits(1, highlightBits)
	require.NoError(t, w.WriteBitsMax(12, DefaultMaxChannels+1))
	w.WriteU8(2)
	w.WriteU32(0)
	w.WriteU32(0)
	w.WriteU32(0)

	res, err := Decode(testTables(current, w.Bytes(), 1), testOptions())
	require.NoError(t, err)
	assert.Equal(t, []Highlight{{ActorID: 12, Kind: 2}}, res.Frames[0].Highlights)
}
