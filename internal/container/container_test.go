package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/levelonedev/boxcars/internal/fstring"
	"github.com/levelonedev/boxcars/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileWriter пишет данные в формате файла реплея
type fileWriter struct {
	buf bytes.Buffer
}

func (w *fileWriter) WriteI32(v int32) { w.u32(uint32(v)) }
func (w *fileWriter) WriteBytes(p []byte) { w.buf.Write(p) }

func (w *fileWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *fileWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *fileWriter) f32(v float32) { w.u32(math.Float32bits(v)) }
func (w *fileWriter) str(s string) { fstring.Write(w, s) }

func (w *fileWriter) prop(key, kind string, value func()) {
	w.str(key)
	w.str(kind)
	w.u64(0)
	value()
}

func (w *fileWriter) strList(items ...string) {
	w.WriteI32(int32(len(items)))
	for _, s := range items {
		w.str(s)
	}
}

type fixture struct {
	numFrames   int32
	objectCount *int32
	network     []byte
}

func defaultFixture() fixture {
	// один пустой кадр: время, дельта, маркеры и три нулевых счётчика
	return fixture{numFrames: 1, network: make([]byte, 21)}
}

func (f fixture) header() []byte {
	var w fileWriter
	w.WriteI32(868)
	w.WriteI32(22)
	w.WriteI32(7)
	w.str("TAGame.Replay_Soccar_TA")
	w.prop("TeamSize", "IntProperty", func() { w.WriteI32(3) })
	w.prop("ReplayName", "StrProperty", func() { w.str("final") })
	w.prop("MapName", "NameProperty", func() { w.str("Stadium_P") })
	w.prop("NumFrames", "IntProperty", func() { w.WriteI32(f.numFrames) })
	w.prop("MaxChannels", "IntProperty", func() { w.WriteI32(1023) })
	w.prop("RecordFPS", "FloatProperty", func() { w.f32(30) })
	w.prop("bUnfairBots", "BoolProperty", func() { w.buf.WriteByte(1) })
	w.prop("OnlineID", "QWordProperty", func() { w.u64(76561198000000000) })
	w.prop("Platform", "ByteProperty", func() {
		w.str("OnlinePlatform")
		w.str("OnlinePlatform_Steam")
	})
	w.prop("Goals", "ArrayProperty", func() {
		w.WriteI32(1)
		w.prop("PlayerName", "StrProperty", func() { w.str("Ω player") })
		w.prop("frame", "IntProperty", func() { w.WriteI32(120) })
		w.str("None")
	})
	w.str("None")
	return w.buf.Bytes()
}

func (f fixture) body() []byte {
	var w fileWriter
	w.strList("Stadium_P")

	w.WriteI32(1) // keyframes
	w.f32(0.5)
	w.WriteI32(15)
	w.WriteI32(64)

	w.WriteI32(int32(len(f.network)))
	w.WriteBytes(f.network)

	w.WriteI32(0) // debug info

	w.WriteI32(1) // tickmarks
	w.str("Team0Goal")
	w.WriteI32(120)

	w.strList()
	if f.objectCount != nil {
		w.WriteI32(*f.objectCount)
		return w.buf.Bytes()
	}
	w.strList("Engine.Actor", "Engine.Actor:bHidden")
	w.strList("Player 1")

	w.WriteI32(1) // class index
	w.str("Engine.Actor")
	w.WriteI32(0)

	w.WriteI32(1) // net cache
	w.WriteI32(0)
	w.WriteI32(0)
	w.WriteI32(1)
	w.WriteI32(1)
	w.WriteI32(1)
	w.WriteI32(0)
	return w.buf.Bytes()
}

func assemble(header []byte, headerCRC uint32, body []byte, bodyCRC uint32) []byte {
	var w fileWriter
	w.WriteI32(int32(len(header)))
	w.u32(headerCRC)
	w.WriteBytes(header)
	w.WriteI32(int32(len(body)))
	w.u32(bodyCRC)
	w.WriteBytes(body)
	return w.buf.Bytes()
}

func (f fixture) bytes() []byte {
	h, b := f.header(), f.body()
	return assemble(h, CRC(h), b, CRC(b))
}

func TestCRC_KnownVector(t *testing.T) {
	// CRC-32/BZIP2: нулевое начальное значение до инверсии
	assert.Equal(t, uint32(0xFC891918), crcWithSeed(0, []byte("123456789")))
	assert.NotEqual(t, CRC([]byte("123456789")), crcWithSeed(0, []byte("123456789")))
}

func TestParse_Header(t *testing.T) {
	rp, err := Parse(defaultFixture().bytes(), Options{Crc: CrcAlways, Network: NetworkNever})
	require.NoError(t, err)

	h := rp.Header
	assert.Equal(t, version.New(868, 22, 7), h.Version())
	assert.Equal(t, "TAGame.Replay_Soccar_TA", h.GameType)

	teamSize, ok := h.Props.Int("TeamSize")
	require.True(t, ok)
	assert.Equal(t, int32(3), teamSize)

	name, ok := h.Props.String("ReplayName")
	require.True(t, ok)
	assert.Equal(t, "final", name)

	mapName, _ := h.Props.String("MapName")
	assert.Equal(t, "Stadium_P", mapName)

	v, _ := h.Props.Get("OnlineID")
	assert.Equal(t, QWordProp(76561198000000000), v)

	v, _ = h.Props.Get("Platform")
	platform := v.(ByteProp)
	assert.Equal(t, "OnlinePlatform", platform.Kind)
	require.NotNil(t, platform.Value)
	assert.Equal(t, "OnlinePlatform_Steam", *platform.Value)

	v, _ = h.Props.Get("Goals")
	goals := v.(ArrayProp)
	require.Len(t, goals, 1)
	player, _ := goals[0].String("PlayerName")
	assert.Equal(t, "Ω player", player)

	assert.Nil(t, rp.Network, "сетевой поток не декодировался")
}

func TestParse_Body(t *testing.T) {
	rp, err := Parse(defaultFixture().bytes(), Options{Network: NetworkNever})
	require.NoError(t, err)

	b := rp.Body
	assert.Equal(t, []string{"Stadium_P"}, b.Levels)
	assert.Equal(t, []KeyFrame{{Time: 0.5, Frame: 15, Position: 64}}, b.KeyFrames)
	assert.Len(t, b.NetworkData, 21)
	assert.Equal(t, []TickMark{{Description: "Team0Goal", Frame: 120}}, b.TickMarks)
	assert.Equal(t, []string{"Engine.Actor", "Engine.Actor:bHidden"}, b.Objects)
	assert.Equal(t, []string{"Player 1"}, b.Names)
	require.Len(t, b.Classes, 1)
	assert.Equal(t, "Engine.Actor", b.Classes[0].Name)
	require.Len(t, b.NetCache, 1)
	assert.Equal(t, int32(1), b.NetCache[0].CacheID)
	assert.Equal(t, int32(1), b.NetCache[0].Properties[0].ObjectID)
}

func TestParse_NetworkStream(t *testing.T) {
	rp, err := Parse(defaultFixture().bytes(), Options{Network: NetworkAlways})
	require.NoError(t, err)
	require.NotNil(t, rp.Network)
	assert.Len(t, rp.Network.Frames, 1)

	tables := rp.NetworkTables()
	assert.Equal(t, 1, tables.FrameCount)
	assert.Equal(t, int32(1023), tables.MaxChannels)
	assert.Equal(t, version.New(868, 22, 7), tables.Version)
}

func TestParse_NetworkModes(t *testing.T) {
	f := defaultFixture()
	f.numFrames = 1000
	data := f.bytes()

	_, err := Parse(data, Options{Network: NetworkAlways})
	require.Error(t, err)
	assert.True(t, errors.Is(err, decodeerr.ErrResourceLimit))
	assert.Contains(t, err.Error(), "too many frames to decode")

	rp, err := Parse(data, Options{Network: NetworkIgnoreOnError})
	require.NoError(t, err)
	assert.Nil(t, rp.Network)
	assert.Error(t, rp.NetworkErr)
	assert.NotNil(t, rp.Body)
}

func TestParse_CrcModes(t *testing.T) {
	f := defaultFixture()
	h, b := f.header(), f.body()
	badCRC := assemble(h, CRC(h), b, CRC(b)+1)

	t.Run("always", func(t *testing.T) {
		_, err := Parse(badCRC, Options{Crc: CrcAlways, Network: NetworkNever})
		require.Error(t, err)
		assert.True(t, errors.Is(err, decodeerr.ErrIntegrity))
		assert.Contains(t, err.Error(), "body crc mismatch")
	})

	t.Run("on error with valid body", func(t *testing.T) {
		_, err := Parse(badCRC, Options{Crc: CrcOnError, Network: NetworkNever})
		assert.NoError(t, err)
	})

	t.Run("never", func(t *testing.T) {
		_, err := Parse(badCRC, Options{Crc: CrcNever, Network: NetworkNever})
		assert.NoError(t, err)
	})

	t.Run("on error with corrupt body", func(t *testing.T) {
		huge := int32(1 << 30)
		f := defaultFixture()
		f.objectCount = &huge
		body := f.body()
		_, err := Parse(assemble(h, CRC(h), body, CRC(body)+1), Options{Network: NetworkNever})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse body and crc check failed. Replay is corrupt")
	})
}

func TestParse_ListTooLarge(t *testing.T) {
	huge := int32(1 << 30)
	f := defaultFixture()
	f.objectCount = &huge

	_, err := Parse(f.bytes(), Options{Network: NetworkNever})
	require.Error(t, err)
	assert.True(t, errors.Is(err, decodeerr.ErrResourceLimit))
	assert.Contains(t, err.Error(), "list of size 1073741824 is too large")
	assert.Contains(t, err.Error(), "could not decode replay objects at offset")

	negative := int32(-3)
	f.objectCount = &negative
	_, err = Parse(f.bytes(), Options{Network: NetworkNever})
	assert.True(t, errors.Is(err, decodeerr.ErrResourceLimit))
}

func TestParse_Truncated(t *testing.T) {
	data := defaultFixture().bytes()

	_, err := Parse(data[:5], Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, decodeerr.ErrTruncated))
	assert.Contains(t, err.Error(), "could not decode replay header size")

	_, err = Parse(data[:20], Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, decodeerr.ErrResourceLimit), "размер секции больше файла")

	_, err = Parse(nil, Options{})
	assert.Error(t, err)
}

func TestModeFlags(t *testing.T) {
	var c CrcCheck
	require.NoError(t, c.Set("Always"))
	assert.Equal(t, CrcAlways, c)
	assert.Equal(t, "always", c.String())
	assert.Error(t, c.Set("sometimes"))

	var n NetworkParse
	require.NoError(t, n.Set("never"))
	assert.Equal(t, NetworkNever, n)
	assert.Equal(t, "ignore-on-error", NetworkIgnoreOnError.String())
	assert.Error(t, n.Set("maybe"))
}
