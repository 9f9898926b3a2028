// Package fstring кодирует строки Unreal (FString).
//
// Формат: длина int32, затем данные с завершающим нулём. Положительная
// длина - число байт в windows-1252, отрицательная - число символов UTF-16LE.
package fstring

import (
	"bytes"
	"math"
	"strings"

	"github.com/levelonedev/boxcars/internal/decodeerr"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Source источник данных для чтения строки
type Source interface {
	ReadI32() (int32, error)
	ReadBytes(n int) ([]byte, error)
	RemainingBytes() int64
	Position() int64
}

// Sink приёмник для записи строки
type Sink interface {
	WriteI32(v int32)
	WriteBytes(p []byte)
}

// Read читает FString
func Read(src Source) (string, error) {
	start := src.Position()
	size, err := src.ReadI32()
	if err != nil {
		return "", err
	}
	if size == 0 {
		return "", nil
	}

	utf16 := size < 0
	var n int64
	if utf16 {
		if size == math.MinInt32 {
			return "", decodeerr.At(decodeerr.ResourceLimit, start, "unexpected size for string: %d", size)
		}
		n = int64(-size) * 2
	} else {
		n = int64(size)
	}
	if n > src.RemainingBytes() {
		return "", decodeerr.At(decodeerr.ResourceLimit, start, "unexpected size for string: %d", size)
	}

	raw, err := src.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return Decode(raw, utf16)
}

// Decode преобразует сырые байты FString (с завершающим нулём) в строку
func Decode(raw []byte, utf16 bool) (string, error) {
	if utf16 {
		if len(raw) >= 2 && raw[len(raw)-1] == 0 && raw[len(raw)-2] == 0 {
			raw = raw[:len(raw)-2]
		}
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return "", decodeerr.New(decodeerr.Integrity, "invalid utf-16 string: %v", err)
		}
		return string(out), nil
	}

	raw = bytes.TrimSuffix(raw, []byte{0})
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", decodeerr.New(decodeerr.Integrity, "invalid windows-1252 string: %v", err)
	}
	return string(out), nil
}

// Encode возвращает заявленную длину и байты FString для s.
// Строки, непредставимые в windows-1252, кодируются в UTF-16.
func Encode(s string) (int32, []byte) {
	if s == "" {
		return 0, nil
	}
	if !strings.ContainsRune(s, 0) {
		if b, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s)); err == nil {
			b = append(b, 0)
			return int32(len(b)), b
		}
	}
	b, _ := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	b = append(b, 0, 0)
	return -int32(len(b) / 2), b
}

// Write записывает s в формате FString
func Write(dst Sink, s string) {
	size, raw := Encode(s)
	dst.WriteI32(size)
	if size != 0 {
		dst.WriteBytes(raw)
	}
}
