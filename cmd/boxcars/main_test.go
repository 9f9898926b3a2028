package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/levelonedev/boxcars/internal/app"
	"github.com/levelonedev/boxcars/internal/config"
	"github.com/levelonedev/boxcars/internal/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	opts, files, _, err := parseFlags([]string{"--crc", "always", "-n", "never", "--strict-deletes", "a.replay"}, &stderr)
	require.NoError(t, err)

	assert.Equal(t, container.CrcAlways, opts.crc)
	assert.Equal(t, container.NetworkNever, opts.network)
	assert.True(t, opts.strictDeletes)
	assert.Equal(t, []string{"a.replay"}, files)

	_, _, _, err = parseFlags([]string{"--crc", "sometimes"}, &stderr)
	assert.Error(t, err, "неизвестный режим CRC отклоняется")
}

func TestMergeConfig(t *testing.T) {
	var stderr bytes.Buffer
	opts, _, fs, err := parseFlags([]string{"--network", "always", "x"}, &stderr)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Decode.Crc = "never"
	cfg.Decode.Network = "never"
	cfg.Decode.MaxFrames = 100
	cfg.Archive.Path = "/tmp/archive"
	require.NoError(t, mergeConfig(opts, fs, cfg))

	assert.Equal(t, container.CrcNever, opts.crc, "значение из конфигурации")
	assert.Equal(t, container.NetworkAlways, opts.network, "явный флаг важнее конфигурации")
	assert.Equal(t, 100, opts.maxFrames)
	assert.Equal(t, "/tmp/archive", opts.archivePath)

	cfg.Decode.Crc = "bogus"
	assert.Error(t, mergeConfig(opts, fs, cfg))
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: boxcars")
	assert.Equal(t, 0, run([]string{"--help"}, &stdout, &stderr))
}

func TestRun_MissingFile(t *testing.T) {
	t.Setenv("BOXCARS_CONFIG", "")
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(t.TempDir(), "missing.replay")}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "missing.replay")
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, &app.Summary{
		File:      "a.replay",
		Version:   "868.22.7",
		Frames:    300,
		Classes:   map[string]int{"TAGame.Car_TA": 4},
		FromCache: true,
	})
	s := out.String()
	assert.Contains(t, s, "a.replay (cached")
	assert.Contains(t, s, "frames     300")
	assert.Contains(t, s, "TAGame.Car_TA×4")
}
