package bitstream

import (
	"fmt"
	"math"
)

// Writer побитовая запись в том же порядке, в котором читает Reader.
// Используется кодировщиками атрибутов и при сборке тестовых потоков.
type Writer struct {
	buf []byte
	pos uint64
}

// NewWriter создаёт пустой Writer
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes возвращает записанные данные; неполный последний байт дополнен нулями
func (w *Writer) Bytes() []byte { return w.buf }

// Len возвращает число записанных бит
func (w *Writer) Len() int64 { return int64(w.pos) }

// WriteBit записывает один бит
func (w *Writer) WriteBit(b bool) {
	if w.pos&7 == 0 {
		w.buf = append(w.buf, 0)
	}
	if b {
		w.buf[w.pos>>3] |= 1 << (w.pos & 7)
	}
	w.pos++
}

// WriteBits записывает младшие n бит v
func (w *Writer) WriteBits(v uint64, n uint) {
	for i := uint(0); i < n; i++ {
		w.WriteBit(v>>i&1 == 1)
	}
}

// WriteBitsMax записывает значение в диапазоне [0, max) так же, как его читает ReadBitsMax
func (w *Writer) WriteBitsMax(v, max uint64) error {
	if max != 0 && v >= max {
		return fmt.Errorf("value %d out of range [0, %d)", v, max)
	}
	var value uint64
	for mask := uint64(1); mask != 0 && value+mask < max; mask <<= 1 {
		bit := v&mask != 0
		if bit {
			value |= mask
		}
		w.WriteBit(bit)
	}
	return nil
}

// WriteBytes записывает байты с текущей битовой позиции
func (w *Writer) WriteBytes(p []byte) {
	if w.pos&7 == 0 {
		w.buf = append(w.buf, p...)
		w.pos += uint64(len(p)) * 8
		return
	}
	for _, b := range p {
		w.WriteBits(uint64(b), 8)
	}
}

// WriteU8 записывает байт
func (w *Writer) WriteU8(v uint8) { w.WriteBits(uint64(v), 8) }

// WriteI8 записывает знаковый байт
func (w *Writer) WriteI8(v int8) { w.WriteBits(uint64(uint8(v)), 8) }

// WriteU16 записывает 16-битное число
func (w *Writer) WriteU16(v uint16) { w.WriteBits(uint64(v), 16) }

// WriteU32 записывает 32-битное число
func (w *Writer) WriteU32(v uint32) { w.WriteBits(uint64(v), 32) }

// WriteI32 записывает 32-битное знаковое число
func (w *Writer) WriteI32(v int32) { w.WriteBits(uint64(uint32(v)), 32) }

// WriteU64 записывает 64-битное число
func (w *Writer) WriteU64(v uint64) { w.WriteBits(v, 64) }

// WriteI64 записывает 64-битное знаковое число
func (w *Writer) WriteI64(v int64) { w.WriteBits(uint64(v), 64) }

// WriteF32 записывает float32
func (w *Writer) WriteF32(v float32) { w.WriteBits(uint64(math.Float32bits(v)), 32) }
