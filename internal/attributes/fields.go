package attributes

import (
	"fmt"

	"github.com/levelonedev/boxcars/internal/bitstream"
	"github.com/levelonedev/boxcars/internal/fstring"
	"github.com/levelonedev/boxcars/internal/version"
)

// fields читает поля составного значения подряд и запоминает первую
// ошибку. После ошибки все чтения возвращают нулевые значения.
type fields struct {
	r   *bitstream.Reader
	v   version.Version
	err error
}

func newFields(r *bitstream.Reader, v version.Version) *fields {
	return &fields{r: r, v: v}
}

func (f *fields) bit() bool {
	if f.err != nil {
		return false
	}
	b, err := f.r.ReadBit()
	f.err = err
	return b
}

func (f *fields) bits(n uint) uint64 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadBits(n)
	f.err = err
	return v
}

func (f *fields) bitsMax(max uint64) uint64 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadBitsMax(max)
	f.err = err
	return v
}

func (f *fields) u8() uint8   { return uint8(f.bits(8)) }
func (f *fields) i8() int8    { return int8(uint8(f.bits(8))) }
func (f *fields) u32() uint32 { return uint32(f.bits(32)) }
func (f *fields) i32() int32  { return int32(uint32(f.bits(32))) }
func (f *fields) u64() uint64 { return f.bits(64) }

func (f *fields) f32() float32 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadF32()
	f.err = err
	return v
}

func (f *fields) bytes(n int) []byte {
	if f.err != nil {
		return nil
	}
	v, err := f.r.ReadBytes(n)
	f.err = err
	return v
}

func (f *fields) str() string {
	if f.err != nil {
		return ""
	}
	s, err := fstring.Read(f.r)
	f.err = err
	return s
}

// optU32 читает u32, если cond истинно
func (f *fields) optU32(cond bool) *uint32 {
	if !cond {
		return nil
	}
	v := f.u32()
	return &v
}

// out пишет поля составного значения; ошибки диапазона копятся так же,
// как при чтении
type out struct {
	w   *bitstream.Writer
	v   version.Version
	err error
}

func newOut(w *bitstream.Writer, v version.Version) *out {
	return &out{w: w, v: v}
}

func (o *out) bit(b bool) { o.w.WriteBit(b) }
func (o *out) bits(v uint64, n uint) { o.w.WriteBits(v, n) }
func (o *out) u8(v uint8) { o.w.WriteU8(v) }
func (o *out) i8(v int8) { o.w.WriteI8(v) }
func (o *out) u32(v uint32) { o.w.WriteU32(v) }
func (o *out) i32(v int32) { o.w.WriteI32(v) }
func (o *out) u64(v uint64) { o.w.WriteU64(v) }
func (o *out) f32(v float32) { o.w.WriteF32(v) }
func (o *out) bytes(p []byte) { o.w.WriteBytes(p) }
func (o *out) str(s string) { fstring.Write(o.w, s) }

func (o *out) bitsMax(v, max uint64) {
	if o.err != nil {
		return
	}
	o.err = o.w.WriteBitsMax(v, max)
}

// optU32 пишет значение, если поле ожидается в этой версии набора
func (o *out) optU32(cond bool, p *uint32, name string) {
	if !cond {
		return
	}
	if p == nil {
		o.fail("field %s is required", name)
		return
	}
	o.u32(*p)
}

func (o *out) fail(format string, args ...interface{}) {
	if o.err == nil {
		o.err = fmt.Errorf(format, args...)
	}
}
