// Package bitstream реализует побитовое чтение и запись буфера.
//
// Биты внутри байта идут от младшего к старшему, многобайтовые числа
// записаны в little endian. Reader - единственная точка доступа к
// сетевому потоку: любое чтение за границей буфера возвращает ошибку
// decodeerr.Truncated и не сдвигает позицию.
package bitstream

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/levelonedev/boxcars/internal/decodeerr"
)

// Reader курсор поверх неизменяемого буфера
type Reader struct {
	buf  []byte
	pos  uint64 // позиция в битах
	size uint64 // длина в битах
}

// NewReader создаёт Reader поверх data. Буфер не копируется и не изменяется.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data, size: uint64(len(data)) * 8}
}

// Position возвращает текущую позицию в битах
func (r *Reader) Position() int64 { return int64(r.pos) }

// Len возвращает размер буфера в битах
func (r *Reader) Len() int64 { return int64(r.size) }

// Remaining возвращает число непрочитанных бит
func (r *Reader) Remaining() int64 { return int64(r.size - r.pos) }

// RemainingBytes возвращает число целых непрочитанных байт
func (r *Reader) RemainingBytes() int64 { return r.Remaining() / 8 }

// IsEmpty сообщает, что непрочитанных бит не осталось
func (r *Reader) IsEmpty() bool { return r.pos >= r.size }

func (r *Reader) insufficient(need uint64) error {
	return decodeerr.At(decodeerr.Truncated, int64(r.pos),
		"need %d bits, %d remaining", need, r.size-r.pos)
}

func (r *Reader) check(n uint64) error {
	if n > r.size-r.pos {
		return r.insufficient(n)
	}
	return nil
}

// peek собирает n (<= 64) бит начиная с pos. Границы проверяет вызывающий.
func (r *Reader) peek(n uint) uint64 {
	if n == 0 {
		return 0
	}
	idx := r.pos >> 3
	shift := uint(r.pos & 7)

	if idx+8 <= uint64(len(r.buf)) && shift+n <= 64 {
		v := binary.LittleEndian.Uint64(r.buf[idx:]) >> shift
		if n < 64 {
			v &= (uint64(1) << n) - 1
		}
		return v
	}

	// Медленный путь: хвост буфера или чтение через 9 байт
	var v uint64
	pos := r.pos
	for got := uint(0); got < n; {
		b := r.buf[pos>>3]
		off := uint(pos & 7)
		take := 8 - off
		if take > n-got {
			take = n - got
		}
		chunk := (uint64(b) >> off) & ((uint64(1) << take) - 1)
		v |= chunk << got
		got += take
		pos += uint64(take)
	}
	return v
}

// ReadBit читает один бит
func (r *Reader) ReadBit() (bool, error) {
	if r.pos >= r.size {
		return false, r.insufficient(1)
	}
	b := r.buf[r.pos>>3]>>(r.pos&7)&1 == 1
	r.pos++
	return b, nil
}

// ReadBits читает n бит (n <= 64) как беззнаковое число
func (r *Reader) ReadBits(n uint) (uint64, error) {
	if n > 64 {
		return 0, decodeerr.At(decodeerr.Integrity, int64(r.pos), "cannot read %d bits at once", n)
	}
	if err := r.check(uint64(n)); err != nil {
		return 0, err
	}
	v := r.peek(n)
	r.pos += uint64(n)
	return v, nil
}

// PeekBits читает n бит, не сдвигая позицию
func (r *Reader) PeekBits(n uint) (uint64, error) {
	if n > 64 {
		return 0, decodeerr.At(decodeerr.Integrity, int64(r.pos), "cannot peek %d bits at once", n)
	}
	if err := r.check(uint64(n)); err != nil {
		return 0, err
	}
	return r.peek(n), nil
}

// ReadBitsMax читает значение в диапазоне [0, max) переменной ширины
// (Unreal SerializeInt). Для max, равного степени двойки, это ровно log2(max) бит.
func (r *Reader) ReadBitsMax(max uint64) (uint64, error) {
	start := r.pos
	var value uint64
	for mask := uint64(1); mask != 0 && value+mask < max; mask <<= 1 {
		if r.pos >= r.size {
			// прочитанные биты плюс следующий
			need := r.pos - start + 1
			if least := uint64(MinBitsMax(max)); need < least {
				need = least
			}
			r.pos = start
			return 0, decodeerr.At(decodeerr.Truncated, int64(start),
				"need at least %d bits, %d remaining", need, r.size-start)
		}
		if r.buf[r.pos>>3]>>(r.pos&7)&1 == 1 {
			value |= mask
		}
		r.pos++
	}
	return value, nil
}

// MinBitsMax возвращает минимальное число бит, которое может занять ReadBitsMax(max)
func MinBitsMax(max uint64) int {
	if max == 0 {
		return 0
	}
	return bits.Len64(max) - 1
}

// ReadBytes читает n целых байт с текущей битовой позиции. Результат - копия.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, decodeerr.At(decodeerr.ResourceLimit, int64(r.pos), "negative byte count %d", n)
	}
	if err := r.check(uint64(n) * 8); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if r.pos&7 == 0 {
		start := r.pos >> 3
		copy(out, r.buf[start:start+uint64(n)])
		r.pos += uint64(n) * 8
		return out, nil
	}
	for i := range out {
		out[i] = byte(r.peek(8))
		r.pos += 8
	}
	return out, nil
}

// SkipBits пропускает n бит
func (r *Reader) SkipBits(n uint64) error {
	if err := r.check(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// EnsureCount проверяет, что count элементов по minBits бит каждый
// помещаются в остаток буфера. Вызывается до любой аллокации по
// объявленному в потоке размеру.
func (r *Reader) EnsureCount(count uint64, minBits uint64, what string) error {
	if minBits == 0 {
		minBits = 1
	}
	remaining := r.size - r.pos
	if count > remaining/minBits {
		return decodeerr.At(decodeerr.ResourceLimit, int64(r.pos),
			"%s count %d needs at least %d bits per element, %d bits remaining",
			what, count, minBits, remaining)
	}
	return nil
}

// ReadU8 читает байт
func (r *Reader) ReadU8() (uint8, error) {
	v, err := r.ReadBits(8)
	return uint8(v), err
}

// ReadI8 читает знаковый байт
func (r *Reader) ReadI8() (int8, error) {
	v, err := r.ReadBits(8)
	return int8(uint8(v)), err
}

// ReadU16 читает 16-битное беззнаковое число
func (r *Reader) ReadU16() (uint16, error) {
	v, err := r.ReadBits(16)
	return uint16(v), err
}

// ReadU32 читает 32-битное беззнаковое число
func (r *Reader) ReadU32() (uint32, error) {
	v, err := r.ReadBits(32)
	return uint32(v), err
}

// ReadI32 читает 32-битное знаковое число
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadBits(32)
	return int32(uint32(v)), err
}

// ReadU64 читает 64-битное беззнаковое число без потери точности
func (r *Reader) ReadU64() (uint64, error) {
	return r.ReadBits(64)
}

// ReadI64 читает 64-битное знаковое число
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadBits(64)
	return int64(v), err
}

// ReadF32 читает float32 (IEEE 754, little endian)
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadBits(32)
	return math.Float32frombits(uint32(v)), err
}
