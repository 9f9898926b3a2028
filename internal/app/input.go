package app

import (
	"bytes"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/levelonedev/boxcars/internal/decodeerr"
)

// zstdMagic сигнатура кадра zstd
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// MaxInputSize предел размера реплея после распаковки
const MaxInputSize = 256 << 20

// IsZstd сообщает, начинаются ли данные с кадра zstd
func IsZstd(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// Unwrap распаковывает zstd-кадр; прочие данные возвращаются как есть
func Unwrap(data []byte) ([]byte, bool, error) {
	if !IsZstd(data) {
		return data, false, nil
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxInputSize), zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, true, err
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, true, decodeerr.New(decodeerr.Integrity, "could not decompress zstd replay: %v", err)
	}
	return out, true, nil
}

// ReadFile читает реплей с диска
func ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxInputSize {
		return nil, decodeerr.New(decodeerr.ResourceLimit, "replay file of %d bytes is too large", info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение %s: %w", path, err)
	}
	return data, nil
}
