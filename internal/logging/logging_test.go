package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":        INFO,
		"trace":   TRACE,
		"Debug":   DEBUG,
		"warning": WARN,
		"ERROR":   ERROR,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, "уровень %q", in)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestComponentLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer CloseLogger()

	l := GetComponentLogger("test-filter")
	require.NoError(t, GetLoggerManager().SetLogLevel("test-filter", WARN))

	l.Info("не должно попасть в вывод")
	l.Warn("delete of actor %d which is not live", 7)

	out := buf.String()
	assert.NotContains(t, out, "не должно попасть")
	assert.Contains(t, out, "delete of actor 7 which is not live")
	assert.Contains(t, out, "component=test-filter")

	assert.Contains(t, GetLoggerManager().ListComponents(), "test-filter")
	assert.Error(t, GetLoggerManager().SetLogLevel("missing", INFO))
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer CloseLogger()

	GetComponentLogger("test-fields").WithFields(INFO, map[string]interface{}{"frame": 12}, "frame decoded")
	assert.Contains(t, buf.String(), "frame=12")
}

func TestHexDumpAround(t *testing.T) {
	data := make([]byte, 200)
	for i := range data {
		data[i] = byte(i)
	}

	out := HexDumpAround(data, 100*8, 4)
	assert.Contains(t, out, "byte offset 96")
	assert.Equal(t, "No data", HexDump(nil))
}
