// Package decodeerr описывает таксономию ошибок декодирования реплея.
//
// Каждая ошибка относится к одной категории и, где возможно, несёт
// контекст: индекс кадра, битовое смещение, id актора, класс и атрибут.
// Категории сопоставляются через errors.Is с сентинелами ниже.
package decodeerr

import (
	"errors"
	"fmt"
	"strings"
)

// Category определяет класс ошибки декодирования
type Category int

const (
	// Truncated - чтение пересекло бы конец буфера
	Truncated Category = iota + 1
	// Unresolvable - ссылка на актор, класс, кеш или свойство, которое не объявлено
	Unresolvable
	// Unsupported - нет кодека для пары (вид атрибута, версия)
	Unsupported
	// ResourceLimit - объявленный размер не помещается в остаток буфера
	ResourceLimit
	// Integrity - нарушение целостности формата (цикл иерархии и т.п.)
	Integrity
)

// String возвращает строковое представление категории
func (c Category) String() string {
	switch c {
	case Truncated:
		return "insufficient data"
	case Unresolvable:
		return "unresolvable reference"
	case Unsupported:
		return "unsupported version/kind"
	case ResourceLimit:
		return "resource limit"
	case Integrity:
		return "format integrity"
	default:
		return "unknown"
	}
}

// Сентинелы для errors.Is
var (
	ErrTruncated     = errors.New("insufficient data")
	ErrUnresolvable  = errors.New("unresolvable reference")
	ErrUnsupported   = errors.New("unsupported version/kind")
	ErrResourceLimit = errors.New("resource limit")
	ErrIntegrity     = errors.New("format integrity")
)

func (c Category) sentinel() error {
	switch c {
	case Truncated:
		return ErrTruncated
	case Unresolvable:
		return ErrUnresolvable
	case Unsupported:
		return ErrUnsupported
	case ResourceLimit:
		return ErrResourceLimit
	case Integrity:
		return ErrIntegrity
	}
	return nil
}

// NoOffset помечает ошибки, у которых нет позиции в потоке
const NoOffset = -1

// Error структурированная ошибка декодирования
type Error struct {
	Category  Category
	Frame     int   // индекс кадра или -1
	BitOffset int64 // смещение в битах или NoOffset
	ActorID   *int32
	ClassName string
	Attribute string
	Msg       string
	Err       error
}

// New создаёт ошибку без контекста кадра
func New(c Category, format string, args ...interface{}) *Error {
	return &Error{
		Category:  c,
		Frame:     -1,
		BitOffset: NoOffset,
		Msg:       fmt.Sprintf(format, args...),
	}
}

// At создаёт ошибку с битовым смещением
func At(c Category, offset int64, format string, args ...interface{}) *Error {
	e := New(c, format, args...)
	e.BitOffset = offset
	return e
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Category.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	var ctx []string
	if e.Frame >= 0 {
		ctx = append(ctx, fmt.Sprintf("frame %d", e.Frame))
	}
	if e.BitOffset != NoOffset {
		ctx = append(ctx, fmt.Sprintf("bit offset %d", e.BitOffset))
	}
	if e.ActorID != nil {
		ctx = append(ctx, fmt.Sprintf("actor %d", *e.ActorID))
	}
	if e.ClassName != "" {
		ctx = append(ctx, "class "+e.ClassName)
	}
	if e.Attribute != "" {
		ctx = append(ctx, "attribute "+e.Attribute)
	}
	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, ", "))
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap возвращает вложенную ошибку
func (e *Error) Unwrap() error { return e.Err }

// Is сопоставляет ошибку с сентинелом её категории
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Category.sentinel()
}

// WithActor дополняет ошибку id актора, если он ещё не задан
func (e *Error) WithActor(id int32) *Error {
	if e.ActorID == nil {
		e.ActorID = &id
	}
	return e
}

// WithClass дополняет ошибку именем класса, если оно ещё не задано
func (e *Error) WithClass(name string) *Error {
	if e.ClassName == "" {
		e.ClassName = name
	}
	return e
}

// WithAttribute дополняет ошибку именем атрибута, если оно ещё не задано
func (e *Error) WithAttribute(name string) *Error {
	if e.Attribute == "" {
		e.Attribute = name
	}
	return e
}

// WithFrame дополняет ошибку индексом кадра, если он ещё не задан
func (e *Error) WithFrame(frame int) *Error {
	if e.Frame < 0 {
		e.Frame = frame
	}
	return e
}

// WithOffset дополняет ошибку смещением, если оно ещё не задано
func (e *Error) WithOffset(offset int64) *Error {
	if e.BitOffset == NoOffset {
		e.BitOffset = offset
	}
	return e
}

// As извлекает *Error из цепочки. Если err не является ошибкой
// декодирования, она оборачивается в ошибку категории fallback.
func As(err error, fallback Category) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	e := New(fallback, "")
	e.Err = err
	return e
}

// CategoryOf возвращает категорию ошибки или 0, если это не ошибка декодирования
func CategoryOf(err error) Category {
	var de *Error
	if errors.As(err, &de) {
		return de.Category
	}
	return 0
}
