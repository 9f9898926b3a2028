package container

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/levelonedev/boxcars/internal/fstring"
	"github.com/lunixbochs/struc"
)

// sectionHeader размер и контрольная сумма секции
type sectionHeader struct {
	Size int32  `struc:",little"`
	CRC  uint32 `struc:",little"`
}

// KeyFrame опорный кадр для перемотки
type KeyFrame struct {
	Time     float32 `struc:",little"`
	Frame    int32   `struc:",little"`
	Position int32   `struc:",little"`
}

type cacheHead struct {
	Object int32 `struc:",little"`
	Parent int32 `struc:",little"`
	Cache  int32 `struc:",little"`
}

type cacheProp struct {
	Object int32 `struc:",little"`
	Stream int32 `struc:",little"`
}

// Минимальные размеры элементов списков в байтах
const (
	sizeKeyFrame  = 12
	sizeDebugInfo = 12 // кадр и две пустые строки
	sizeTickMark  = 8
	sizeString    = 4
	sizeClassIdx  = 8
	sizeCacheHead = 16 // три поля и длина списка свойств
	sizeCacheProp = 8
)

// reader курсор по байтам секции. Смещения в ошибках абсолютные.
type reader struct {
	data []byte
	pos  int
	base int
}

func newReader(data []byte, base int) *reader {
	return &reader{data: data, base: base}
}

// Position абсолютное смещение в битах, как у ошибок сетевого потока
func (r *reader) Position() int64 { return r.Offset() * 8 }

// Offset абсолютное смещение в байтах
func (r *reader) Offset() int64 { return int64(r.base + r.pos) }

// RemainingBytes число непрочитанных байт
func (r *reader) RemainingBytes() int64 { return int64(len(r.data) - r.pos) }

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || n > len(r.data)-r.pos {
		return nil, decodeerr.At(decodeerr.Truncated, r.Position(),
			"need %d bytes, %d remaining", n, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBytes возвращает копию n байт
func (r *reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func (r *reader) ReadI32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *reader) readU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) readU64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) readF32() (float32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (r *reader) text() (string, error) {
	return fstring.Read(r)
}

// unpack читает запись фиксированного размера
func (r *reader) unpack(v interface{}, size int) error {
	b, err := r.take(size)
	if err != nil {
		return err
	}
	return struc.Unpack(bytes.NewReader(b), v)
}

// count читает длину списка и проверяет, что элементы минимального
// размера помещаются в остаток секции
func (r *reader) count(minSize int) (int, error) {
	start := r.Position()
	n, err := r.ReadI32()
	if err != nil {
		return 0, err
	}
	if n < 0 || int64(n)*int64(minSize) > r.RemainingBytes() {
		return 0, decodeerr.At(decodeerr.ResourceLimit, start, "list of size %d is too large", n)
	}
	return int(n), nil
}

func (r *reader) textList() ([]string, error) {
	n, err := r.count(sizeString)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := r.text()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
