package attributes

import (
	"math"
	"math/bits"
)

const (
	quatBits    = 18
	quatMax     = (1 << quatBits) - 1
	invSqrt2    = 1 / math.Sqrt2
	fixedBias   = 1 << 15
	fixedMaxBit = (1 << 15) - 1
)

// vectorMaxBits предел ширины компоненты сжатого вектора
func (f *fields) vectorMaxBits() uint64 {
	if f.v.NetAtLeast(7) {
		return 22
	}
	return 20
}

func (o *out) vectorMaxBits() uint64 {
	if o.v.NetAtLeast(7) {
		return 22
	}
	return 20
}

// vector3i читает сжатый вектор: ширина компоненты, затем три значения со смещением
func (f *fields) vector3i() Vector3i {
	sizeBits := f.bitsMax(f.vectorMaxBits())
	if f.err != nil {
		return Vector3i{}
	}
	bias := int64(1) << (sizeBits + 1)
	n := uint(sizeBits + 2)
	x := int64(f.bits(n)) - bias
	y := int64(f.bits(n)) - bias
	z := int64(f.bits(n)) - bias
	v := Vector3i{X: int32(x), Y: int32(y), Z: int32(z)}
	if sizeBits != minSizeBits(v) {
		v.width = uint8(sizeBits + 1)
	}
	return v
}

// vector3i пишет вектор с минимальной шириной компоненты, как это делает Unreal,
// либо с шириной, прочитанной с провода
func (o *out) vector3i(v Vector3i) {
	maxBits := o.vectorMaxBits()
	sizeBits := minSizeBits(v)
	if v.width > 0 && uint64(v.width-1) < maxBits && fitsWidth(v, uint64(v.width-1)) {
		sizeBits = uint64(v.width - 1)
	}
	if sizeBits >= maxBits {
		o.fail("vector component %d does not fit in %d bits", maxAbs(v.X, v.Y, v.Z), maxBits)
		return
	}
	o.bitsMax(sizeBits, maxBits)
	bias := int64(1) << (sizeBits + 1)
	n := uint(sizeBits + 2)
	o.bits(uint64(int64(v.X)+bias), n)
	o.bits(uint64(int64(v.Y)+bias), n)
	o.bits(uint64(int64(v.Z)+bias), n)
}

// minSizeBits ширина компоненты, которую выбирает кодировщик
func minSizeBits(v Vector3i) uint64 {
	width := uint64(bits.Len64(maxAbs(v.X, v.Y, v.Z)))
	if width < 1 {
		width = 1
	}
	return width - 1
}

// fitsWidth проверяет, что все компоненты помещаются в диапазон ширины sizeBits
func fitsWidth(v Vector3i, sizeBits uint64) bool {
	bias := int64(1) << (sizeBits + 1)
	for _, c := range [3]int32{v.X, v.Y, v.Z} {
		if int64(c) < -bias || int64(c) >= bias {
			return false
		}
	}
	return true
}

// maxAbs возвращает наибольший модуль компонент
func maxAbs(vals ...int32) uint64 {
	var m uint64
	for _, v := range vals {
		a := int64(v)
		if a < 0 {
			a = -a
		}
		if uint64(a) > m {
			m = uint64(a)
		}
	}
	return m
}

// vector3f читает вектор, начиная с сетевой версии 5 масштабированный на 100
func (f *fields) vector3f() Vector3f {
	v := f.vector3i()
	if f.v.NetAtLeast(5) {
		return Vector3f{X: float32(v.X) / 100, Y: float32(v.Y) / 100, Z: float32(v.Z) / 100, width: v.width}
	}
	return Vector3f{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z), width: v.width}
}

func (o *out) vector3f(v Vector3f) {
	scale := 1.0
	if o.v.NetAtLeast(5) {
		scale = 100
	}
	o.vector3i(Vector3i{
		X:     int32(math.Round(float64(v.X) * scale)),
		Y:     int32(math.Round(float64(v.Y) * scale)),
		Z:     int32(math.Round(float64(v.Z) * scale)),
		width: v.width,
	})
}

func (f *fields) optI8() *int8 {
	if !f.bit() {
		return nil
	}
	v := f.i8()
	return &v
}

func (o *out) optI8(p *int8) {
	o.bit(p != nil)
	if p != nil {
		o.i8(*p)
	}
}

func (f *fields) rotation() Rotation {
	return Rotation{Yaw: f.optI8(), Pitch: f.optI8(), Roll: f.optI8()}
}

func (o *out) rotation(r Rotation) {
	o.optI8(r.Yaw)
	o.optI8(r.Pitch)
	o.optI8(r.Roll)
}

// quaternion читает сжатый кватернион: индекс наибольшей компоненты и три
// остальные по 18 бит. Наибольшая восстанавливается из нормы.
func (f *fields) quaternion() Quaternion {
	largest := f.bits(2)
	a := uncompressQuat(f.bits(quatBits))
	b := uncompressQuat(f.bits(quatBits))
	c := uncompressQuat(f.bits(quatBits))
	if f.err != nil {
		return Quaternion{}
	}
	sum := float64(a)*float64(a) + float64(b)*float64(b) + float64(c)*float64(c)
	extra := float32(0)
	if sum < 1 {
		extra = float32(math.Sqrt(1 - sum))
	}
	var q Quaternion
	switch largest {
	case 0:
		q = Quaternion{X: extra, Y: a, Z: b, W: c}
	case 1:
		q = Quaternion{X: a, Y: extra, Z: b, W: c}
	case 2:
		q = Quaternion{X: a, Y: b, Z: extra, W: c}
	default:
		q = Quaternion{X: a, Y: b, Z: c, W: extra}
	}
	if uint64(largestComponent(q)) != largest {
		q.largest = uint8(largest + 1)
	}
	return q
}

func (o *out) quaternion(q Quaternion) {
	comps := [4]float32{q.X, q.Y, q.Z, q.W}
	largest := largestComponent(q)
	if q.largest > 0 && q.largest <= 4 {
		largest = int(q.largest - 1)
	}
	// q и -q задают один поворот; восстанавливаемая компонента передаётся неотрицательной
	sign := float32(1)
	if comps[largest] < 0 {
		sign = -1
	}
	o.bits(uint64(largest), 2)
	for i, c := range comps {
		if i != largest {
			o.bits(compressQuat(c*sign), quatBits)
		}
	}
}

// largestComponent индекс наибольшей по модулю компоненты, при равенстве первой
func largestComponent(q Quaternion) int {
	comps := [4]float32{q.X, q.Y, q.Z, q.W}
	largest := 0
	for i := 1; i < 4; i++ {
		if abs32(comps[i]) > abs32(comps[largest]) {
			largest = i
		}
	}
	return largest
}

func uncompressQuat(raw uint64) float32 {
	return float32((float64(raw)/quatMax*2 - 1) * invSqrt2)
}

func compressQuat(v float32) uint64 {
	raw := math.Round((float64(v)/invSqrt2 + 1) / 2 * quatMax)
	if raw < 0 {
		return 0
	}
	if raw > quatMax {
		return quatMax
	}
	return uint64(raw)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// fixedRotation читает поворот в старом формате: три компоненты по 16 бит
func (f *fields) fixedRotation() Quaternion {
	x := uncompressFixed(f.bits(16))
	y := uncompressFixed(f.bits(16))
	z := uncompressFixed(f.bits(16))
	return Quaternion{X: x, Y: y, Z: z}
}

func (o *out) fixedRotation(q Quaternion) {
	o.bits(compressFixed(q.X), 16)
	o.bits(compressFixed(q.Y), 16)
	o.bits(compressFixed(q.Z), 16)
}

func uncompressFixed(raw uint64) float32 {
	return float32((float64(raw) - fixedBias) / fixedMaxBit)
}

func compressFixed(v float32) uint64 {
	raw := math.Round(float64(v)*fixedMaxBit) + fixedBias
	if raw < 0 {
		return 0
	}
	if raw > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint64(raw)
}
