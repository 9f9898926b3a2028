package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boxcars.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
decode:
  crc: always
  strict_deletes: true
  max_frames: 50000
cache:
  addr: localhost:6379
  ttl_minutes: 5
eventbus:
  url: nats://localhost:4222
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "always", cfg.Decode.GetCrc())
	assert.True(t, cfg.Decode.StrictDeletes)
	assert.Equal(t, 50000, cfg.Decode.GetMaxFrames())
	assert.Equal(t, "localhost:6379", cfg.Cache.GetAddr())
	assert.Equal(t, 5*time.Minute, cfg.Cache.GetTTL())
	assert.Equal(t, "replay.decoded", cfg.EventBus.GetSubject())
}

func TestLoad_EnvFallback(t *testing.T) {
	t.Setenv("BOXCARS_CONFIG", "")
	t.Setenv("BOXCARS_NETWORK", "never")
	t.Setenv("BOXCARS_METRICS_ADDR", ":2112")
	t.Setenv("BOXCARS_MAX_FRAMES", "не число")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg, "без файла используются значения по умолчанию")

	assert.Equal(t, "never", cfg.Decode.GetNetwork())
	assert.Equal(t, "on-error", cfg.Decode.GetCrc())
	assert.Equal(t, ":2112", cfg.Metrics.GetAddr())
	assert.Equal(t, 0, cfg.Decode.GetMaxFrames(), "некорректное значение игнорируется")
	assert.Equal(t, 24*time.Hour, cfg.Cache.GetTTL())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decode: [unclosed"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}
