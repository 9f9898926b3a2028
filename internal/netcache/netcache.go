// Package netcache разрешает таблицу сетевого кеша реплея: для каждого
// класса - соответствие id потока и свойства из схемы класса.
package netcache

import (
	"sort"

	"github.com/levelonedev/boxcars/internal/attributes"
	"github.com/levelonedev/boxcars/internal/classes"
	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/levelonedev/boxcars/internal/version"
)

// PropertyMapping объявленная пара (объект свойства, id потока)
type PropertyMapping struct {
	ObjectID int32
	StreamID int32
}

// Declaration запись сетевого кеша в порядке объявления
type Declaration struct {
	ClassID    int32
	ParentID   int32
	CacheID    int32
	Properties []PropertyMapping
}

// isRoot сообщает, что у записи нет родительского кеша
func (d Declaration) isRoot() bool {
	return d.ParentID <= 0 || d.ParentID == d.CacheID
}

// Attribute атрибут, доступный по id потока
type Attribute struct {
	StreamID int32
	Slot     int
	Name     string
	ObjectID int32
	Kind     attributes.Kind
}

// Entry разрешённый кеш одного класса
type Entry struct {
	CacheID   int32
	ClassID   int32
	ClassName string
	Version   version.Version

	attrs     map[int32]Attribute
	maxStream int32
}

// Lookup возвращает атрибут по id потока
func (e *Entry) Lookup(streamID int32) (Attribute, error) {
	attr, ok := e.attrs[streamID]
	if !ok {
		return Attribute{}, decodeerr.New(decodeerr.Unresolvable,
			"stream id %d is not in net cache %d", streamID, e.CacheID).WithClass(e.ClassName)
	}
	return attr, nil
}

// MaxStreamID возвращает наибольший id потока; ширина id в кадре зависит от него
func (e *Entry) MaxStreamID() int32 { return e.maxStream }

// Len возвращает число атрибутов
func (e *Entry) Len() int { return len(e.attrs) }

// Attributes возвращает атрибуты, упорядоченные по id потока
func (e *Entry) Attributes() []Attribute {
	out := make([]Attribute, 0, len(e.attrs))
	for _, a := range e.attrs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StreamID < out[j].StreamID })
	return out
}

// Caches все разрешённые кеши сессии
type Caches struct {
	entries []*Entry
	byClass map[int32]*Entry
	h       *classes.Hierarchy
}

// Resolve разрешает объявления по порядку. Запись с родителем наследует
// его атрибуты; собственные атрибуты перекрывают унаследованные с тем же
// id потока.
func Resolve(decls []Declaration, h *classes.Hierarchy, v version.Version) (*Caches, error) {
	c := &Caches{
		entries: make([]*Entry, 0, len(decls)),
		byClass: make(map[int32]*Entry, len(decls)),
		h:       h,
	}

	for i, d := range decls {
		schema, err := h.Schema(d.ClassID)
		if err != nil {
			return nil, decodeerr.New(decodeerr.Unresolvable,
				"net cache %d names unknown class %d", d.CacheID, d.ClassID)
		}

		e := &Entry{
			CacheID:   d.CacheID,
			ClassID:   d.ClassID,
			ClassName: schema.ClassName,
			Version:   v,
			attrs:     make(map[int32]Attribute, len(d.Properties)),
			maxStream: -1,
		}

		if !d.isRoot() {
			parent, err := findParent(decls, c.entries, i)
			if err != nil {
				return nil, err
			}
			for stream, attr := range parent.attrs {
				// перекрытое в наследнике свойство берётся из его схемы
				if p, ok := schema.ByObject(attr.ObjectID); ok {
					attr = fromProperty(stream, p)
				}
				e.put(attr)
			}
		}

		for _, pm := range d.Properties {
			if pm.StreamID < 0 {
				return nil, decodeerr.New(decodeerr.Integrity,
					"negative stream id %d in net cache %d", pm.StreamID, d.CacheID).WithClass(schema.ClassName)
			}
			p, ok := schema.ByObject(pm.ObjectID)
			if !ok {
				return nil, decodeerr.New(decodeerr.Unresolvable,
					"unknown property %d in net cache %d", pm.ObjectID, d.CacheID).WithClass(schema.ClassName)
			}
			e.put(fromProperty(pm.StreamID, p))
		}

		c.entries = append(c.entries, e)
		c.byClass[d.ClassID] = e
	}
	return c, nil
}

func fromProperty(stream int32, p classes.Property) Attribute {
	return Attribute{StreamID: stream, Slot: p.Slot, Name: p.Name, ObjectID: p.ObjectID, Kind: p.Kind}
}

func (e *Entry) put(a Attribute) {
	e.attrs[a.StreamID] = a
	if a.StreamID > e.maxStream {
		e.maxStream = a.StreamID
	}
}

// findParent ищет родителя записи i среди ранее объявленных, начиная с последней
func findParent(decls []Declaration, resolved []*Entry, i int) (*Entry, error) {
	d := decls[i]
	for j := len(resolved) - 1; j >= 0; j-- {
		if resolved[j].CacheID == d.ParentID {
			return resolved[j], nil
		}
	}
	for _, later := range decls[i+1:] {
		if later.CacheID == d.ParentID {
			return nil, decodeerr.New(decodeerr.Integrity,
				"net cache %d refers to parent cache %d declared after it", d.CacheID, d.ParentID)
		}
	}
	return nil, decodeerr.New(decodeerr.Unresolvable,
		"parent cache %d of net cache %d is not declared", d.ParentID, d.CacheID)
}

// ForClass возвращает последний объявленный кеш класса, а если его нет -
// кеш ближайшего предка
func (c *Caches) ForClass(classID int32) (*Entry, error) {
	if e, ok := c.byClass[classID]; ok {
		return e, nil
	}
	for _, ancestor := range c.h.Ancestors(classID) {
		if e, ok := c.byClass[ancestor]; ok {
			return e, nil
		}
	}
	name, _ := c.h.Name(classID)
	return nil, decodeerr.New(decodeerr.Unresolvable, "no net cache for class %d", classID).WithClass(name)
}

// Entries возвращает записи в порядке объявления
func (c *Caches) Entries() []*Entry {
	return append([]*Entry(nil), c.entries...)
}

// DeriveParents строит таблицу родителей классов по наслоению кешей:
// класс записи получает родителем класс её родительского кеша. Первое
// найденное соответствие для класса сохраняется.
func DeriveParents(decls []Declaration) map[int32]int32 {
	parents := make(map[int32]int32)
	for i, d := range decls {
		if d.isRoot() {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if decls[j].CacheID != d.ParentID {
				continue
			}
			if decls[j].ClassID != d.ClassID {
				if _, set := parents[d.ClassID]; !set {
					parents[d.ClassID] = decls[j].ClassID
				}
			}
			break
		}
	}
	return parents
}
