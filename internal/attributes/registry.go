package attributes

import (
	"fmt"
	"sort"

	"github.com/levelonedev/boxcars/internal/bitstream"
	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/levelonedev/boxcars/internal/version"
)

// DecodeFunc читает значение атрибута для указанной версии реплея
type DecodeFunc func(r *bitstream.Reader, v version.Version) (Value, error)

// EncodeFunc пишет значение атрибута; формат зеркален DecodeFunc той же версии
type EncodeFunc func(w *bitstream.Writer, v version.Version, val Value) error

// Codec пара функций для вида атрибута, действующая начиная с версии Since
// и сетевой версии Net
type Codec struct {
	Kind   Kind
	Since  version.Version
	Net    int32
	Decode DecodeFunc
	Encode EncodeFunc
}

// applies сообщает, действует ли кодек для версии v
func (c Codec) applies(v version.Version) bool {
	return v.AtLeast(c.Since) && v.NetAtLeast(c.Net)
}

// codec собирает Codec из типизированных функций
func codec[T Value](kind Kind, since version.Version, dec func(*fields) T, enc func(*out, T)) Codec {
	return Codec{
		Kind:  kind,
		Since: since,
		Decode: func(r *bitstream.Reader, v version.Version) (Value, error) {
			f := newFields(r, v)
			val := dec(f)
			if f.err != nil {
				return nil, f.err
			}
			return val, nil
		},
		Encode: func(w *bitstream.Writer, v version.Version, val Value) error {
			typed, ok := val.(T)
			if !ok {
				return fmt.Errorf("cannot encode %T as %s", val, kind)
			}
			o := newOut(w, v)
			enc(o, typed)
			return o.err
		},
	}
}

// netCodec собирает кодек, действующий начиная с сетевой версии net
func netCodec[T Value](kind Kind, net int32, dec func(*fields) T, enc func(*out, T)) Codec {
	c := codec(kind, version.Version{}, dec, enc)
	c.Net = net
	return c
}

// Registry набор кодеков по видам атрибутов. Для каждого вида может быть
// несколько кодеков с разными версиями ввода в действие.
type Registry struct {
	codecs map[Kind][]Codec
}

// NewRegistry создаёт пустой реестр
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[Kind][]Codec)}
}

// Builtin создаёт реестр со всеми встроенными кодеками
func Builtin() *Registry {
	reg := NewRegistry()
	for _, c := range builtinCodecs() {
		reg.Register(c)
	}
	return reg
}

// Register добавляет кодек. Кодек с тем же видом и теми же версиями заменяется.
func (r *Registry) Register(c Codec) {
	list := r.codecs[c.Kind]
	for i := range list {
		if list[i].Since == c.Since && list[i].Net == c.Net {
			list[i] = c
			return
		}
	}
	list = append(list, c)
	// новые версии первыми
	sort.Slice(list, func(i, j int) bool {
		if d := list[i].Since.Compare(list[j].Since); d != 0 {
			return d > 0
		}
		return list[i].Net > list[j].Net
	})
	r.codecs[c.Kind] = list
}

// Lookup возвращает кодек с наибольшей версией Since, не превышающей v;
// при равных Since выигрывает наибольшая подходящая сетевая версия
func (r *Registry) Lookup(kind Kind, v version.Version) (Codec, error) {
	for _, c := range r.codecs[kind] {
		if c.applies(v) {
			return c, nil
		}
	}
	return Codec{}, decodeerr.New(decodeerr.Unsupported, "no codec for attribute kind %s at version %s", kind, v)
}

// Kinds возвращает виды, для которых зарегистрирован хотя бы один кодек
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.codecs))
	for k := range r.codecs {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Codecs возвращает все кодеки вида, новые версии первыми
func (r *Registry) Codecs(kind Kind) []Codec {
	return append([]Codec(nil), r.codecs[kind]...)
}

// Resolve фиксирует выбор кодеков для версии реплея. Виды без подходящего
// кодека в таблицу не попадают и дают ошибку при обращении.
func (r *Registry) Resolve(v version.Version) *Table {
	t := &Table{version: v, codecs: make(map[Kind]Codec, len(r.codecs))}
	for kind := range r.codecs {
		if c, err := r.Lookup(kind, v); err == nil {
			t.codecs[kind] = c
		}
	}
	return t
}

// Table кодеки, выбранные для одной версии реплея. Только для чтения,
// безопасна для использования из нескольких горутин.
type Table struct {
	version version.Version
	codecs  map[Kind]Codec
}

// Version возвращает версию, для которой построена таблица
func (t *Table) Version() version.Version { return t.version }

// Supports сообщает, есть ли кодек для вида
func (t *Table) Supports(kind Kind) bool {
	_, ok := t.codecs[kind]
	return ok
}

// Decode читает значение вида kind
func (t *Table) Decode(kind Kind, r *bitstream.Reader) (Value, error) {
	c, ok := t.codecs[kind]
	if !ok {
		return nil, decodeerr.At(decodeerr.Unsupported, r.Position(),
			"no codec for attribute kind %s at version %s", kind, t.version)
	}
	return c.Decode(r, t.version)
}

// Encode пишет значение его собственного вида
func (t *Table) Encode(w *bitstream.Writer, val Value) error {
	if val == nil {
		return fmt.Errorf("cannot encode nil attribute value")
	}
	c, ok := t.codecs[val.Kind()]
	if !ok {
		return decodeerr.New(decodeerr.Unsupported, "no codec for attribute kind %s at version %s", val.Kind(), t.version)
	}
	return c.Encode(w, t.version, val)
}
