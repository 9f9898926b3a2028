package container

import (
	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/levelonedev/boxcars/internal/version"
)

// PropValue значение свойства заголовка
type PropValue interface {
	// Type имя типа свойства в файле
	Type() string
}

type (
	IntProp   int32
	StrProp   string
	NameProp  string
	FloatProp float32
	BoolProp  bool
	QWordProp uint64
	ArrayProp []Properties
)

// ByteProp перечисление: тип и значение. Для некоторых платформ значение не пишется.
type ByteProp struct {
	Kind  string
	Value *string
}

// StructProp вложенная структура
type StructProp struct {
	Name   string
	Fields Properties
}

func (IntProp) Type() string { return "IntProperty" }
func (StrProp) Type() string { return "StrProperty" }
func (NameProp) Type() string { return "NameProperty" }
func (FloatProp) Type() string { return "FloatProperty" }
func (BoolProp) Type() string { return "BoolProperty" }
func (QWordProp) Type() string { return "QWordProperty" }
func (ArrayProp) Type() string { return "ArrayProperty" }
func (ByteProp) Type() string { return "ByteProperty" }
func (StructProp) Type() string { return "StructProperty" }

// Property пара ключ-значение заголовка
type Property struct {
	Key   string
	Value PropValue
}

// Properties свойства в порядке файла
type Properties []Property

// Get возвращает первое свойство с ключом
func (p Properties) Get(key string) (PropValue, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}
	return nil, false
}

// Int возвращает целочисленное свойство
func (p Properties) Int(key string) (int32, bool) {
	v, ok := p.Get(key)
	if !ok {
		return 0, false
	}
	i, ok := v.(IntProp)
	return int32(i), ok
}

// String возвращает строковое свойство (Str или Name)
func (p Properties) String(key string) (string, bool) {
	v, ok := p.Get(key)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case StrProp:
		return string(s), true
	case NameProp:
		return string(s), true
	}
	return "", false
}

// Header заголовок реплея
type Header struct {
	Major    int32
	Minor    int32
	Net      int32
	GameType string
	Props    Properties
}

// Version версия движка из заголовка
func (h *Header) Version() version.Version {
	return version.New(h.Major, h.Minor, h.Net)
}

// hasNetVersion сообщает, пишется ли сетевая версия в заголовок
func hasNetVersion(major, minor int32) bool {
	return major > 865 && minor > 17
}

func parseHeader(r *reader) (*Header, error) {
	var h Header
	var err error
	if h.Major, err = r.ReadI32(); err != nil {
		return nil, err
	}
	if h.Minor, err = r.ReadI32(); err != nil {
		return nil, err
	}
	if hasNetVersion(h.Major, h.Minor) {
		if h.Net, err = r.ReadI32(); err != nil {
			return nil, err
		}
	}
	if h.GameType, err = r.text(); err != nil {
		return nil, err
	}
	if h.Props, err = parseProperties(r, 0); err != nil {
		return nil, err
	}
	return &h, nil
}

// maxPropDepth ограничивает вложенность массивов и структур
const maxPropDepth = 32

// parseProperties читает словарь свойств до ключа "None"
func parseProperties(r *reader, depth int) (Properties, error) {
	if depth > maxPropDepth {
		return nil, decodeerr.At(decodeerr.ResourceLimit, r.Position(), "properties nested deeper than %d", maxPropDepth)
	}

	var props Properties
	for {
		key, err := r.text()
		if err != nil {
			return nil, err
		}
		if key == "None" || key == "\x00\x00\x00None" {
			return props, nil
		}

		kind, err := r.text()
		if err != nil {
			return nil, err
		}
		// размер значения; не используется, значение читается по типу
		if _, err := r.readU64(); err != nil {
			return nil, err
		}

		val, err := parsePropValue(r, kind, depth)
		if err != nil {
			return nil, decodeerr.As(err, decodeerr.Integrity).WithAttribute(key)
		}
		props = append(props, Property{Key: key, Value: val})
	}
}

func parsePropValue(r *reader, kind string, depth int) (PropValue, error) {
	switch kind {
	case "IntProperty":
		v, err := r.ReadI32()
		return IntProp(v), err
	case "StrProperty":
		v, err := r.text()
		return StrProp(v), err
	case "NameProperty":
		v, err := r.text()
		return NameProp(v), err
	case "FloatProperty":
		v, err := r.readF32()
		return FloatProp(v), err
	case "BoolProperty":
		v, err := r.readU8()
		return BoolProp(v != 0), err
	case "QWordProperty":
		v, err := r.readU64()
		return QWordProp(v), err
	case "ByteProperty":
		k, err := r.text()
		if err != nil {
			return nil, err
		}
		if k == "OnlinePlatform_Steam" || k == "OnlinePlatform_PS4" {
			return ByteProp{Kind: k}, nil
		}
		v, err := r.text()
		if err != nil {
			return nil, err
		}
		return ByteProp{Kind: k, Value: &v}, nil
	case "ArrayProperty":
		n, err := r.count(sizeString)
		if err != nil {
			return nil, err
		}
		arr := make(ArrayProp, 0, n)
		for i := 0; i < n; i++ {
			elem, err := parseProperties(r, depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case "StructProperty":
		name, err := r.text()
		if err != nil {
			return nil, err
		}
		fields, err := parseProperties(r, depth+1)
		if err != nil {
			return nil, err
		}
		return StructProp{Name: name, Fields: fields}, nil
	}
	return nil, decodeerr.At(decodeerr.Unsupported, r.Position(), "did not expect a property of: %s", kind)
}
