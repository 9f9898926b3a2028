// Package classes строит схемы атрибутов классов реплея.
//
// Схема класса - упорядоченный список свойств: сначала свойства предков,
// затем собственные. Свойства класса - объекты вида "<Класс>:<Свойство>"
// в порядке таблицы объектов. Все данные живут в рамках одной сессии
// декодирования.
package classes

import (
	"sort"
	"strings"

	"github.com/levelonedev/boxcars/internal/attributes"
	"github.com/levelonedev/boxcars/internal/decodeerr"
)

// ClassIndex запись таблицы классов: имя класса и id его объекта
type ClassIndex struct {
	Name string
	ID   int32
}

// Property свойство в плоской схеме класса
type Property struct {
	Slot     int
	Name     string
	ObjectID int32
	Kind     attributes.Kind
}

// ShortName возвращает имя свойства без имени класса
func (p Property) ShortName() string {
	return shortName(p.Name)
}

func shortName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Schema плоская схема класса. Слоты идут подряд от 0.
type Schema struct {
	ClassID    int32
	ClassName  string
	Properties []Property

	byObject map[int32]int
}

// Len возвращает число слотов
func (s *Schema) Len() int { return len(s.Properties) }

// ByObject находит свойство по id объекта. Id свойства предка, перекрытого
// в наследнике, указывает на слот наследника.
func (s *Schema) ByObject(objectID int32) (Property, bool) {
	slot, ok := s.byObject[objectID]
	if !ok {
		return Property{}, false
	}
	return s.Properties[slot], true
}

// KindFunc определяет вид атрибута по полному имени свойства
type KindFunc func(name string) attributes.Kind

type color uint8

const (
	white color = iota
	grey
	black
)

// Hierarchy иерархия классов одной сессии
type Hierarchy struct {
	classes []ClassIndex
	names   map[int32]string
	byName  map[string]int32
	parents map[int32]int32
	schemas map[int32]*Schema
}

// Build строит иерархию и схемы всех классов таблицы. parents сопоставляет
// id класса с id родителя; отрицательный или отсутствующий родитель -
// корень. Цикл в иерархии - ошибка целостности, родитель вне таблицы
// классов - неразрешимая ссылка.
func Build(classes []ClassIndex, objects []string, parents map[int32]int32, kinds KindFunc) (*Hierarchy, error) {
	if kinds == nil {
		kinds = attributes.KindOf
	}
	h := &Hierarchy{
		classes: append([]ClassIndex(nil), classes...),
		names:   make(map[int32]string, len(classes)),
		byName:  make(map[string]int32, len(classes)),
		parents: make(map[int32]int32, len(parents)),
		schemas: make(map[int32]*Schema, len(classes)),
	}
	for _, c := range classes {
		h.names[c.ID] = c.Name
		h.byName[c.Name] = c.ID
	}
	for child, parent := range parents {
		h.parents[child] = parent
	}

	b := &builder{
		h:     h,
		kinds: kinds,
		own:   ownProperties(objects, h.byName),
		state: make(map[int32]color, len(classes)),
		objs:  objects,
	}
	for _, c := range classes {
		if _, err := b.flatten(c.ID); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// ownProperties группирует объекты-свойства по имени класса в порядке таблицы объектов
func ownProperties(objects []string, classes map[string]int32) map[string][]int32 {
	own := make(map[string][]int32)
	for i, name := range objects {
		sep := strings.IndexByte(name, ':')
		if sep <= 0 {
			continue
		}
		owner := name[:sep]
		if _, ok := classes[owner]; !ok {
			continue
		}
		own[owner] = append(own[owner], int32(i))
	}
	return own
}

type builder struct {
	h     *Hierarchy
	kinds KindFunc
	own   map[string][]int32
	state map[int32]color
	objs  []string
}

func (b *builder) flatten(id int32) (*Schema, error) {
	name := b.h.names[id]
	switch b.state[id] {
	case black:
		return b.h.schemas[id], nil
	case grey:
		return nil, decodeerr.New(decodeerr.Integrity, "class hierarchy cycle through %s", name).WithClass(name)
	}
	b.state[id] = grey

	schema := &Schema{ClassID: id, ClassName: name, byObject: make(map[int32]int)}
	index := make(map[string]int)

	if parent, ok := b.h.parents[id]; ok && parent >= 0 {
		if _, known := b.h.names[parent]; !known {
			return nil, decodeerr.New(decodeerr.Unresolvable,
				"parent %d of class %s is not a known class", parent, name).WithClass(name)
		}
		ps, err := b.flatten(parent)
		if err != nil {
			return nil, err
		}
		schema.Properties = append(schema.Properties, ps.Properties...)
		for obj, slot := range ps.byObject {
			schema.byObject[obj] = slot
		}
		for _, p := range ps.Properties {
			index[p.ShortName()] = p.Slot
		}
	}

	for _, obj := range b.own[name] {
		full := b.objs[obj]
		prop := Property{Name: full, ObjectID: obj, Kind: b.kinds(full)}
		if slot, ok := index[shortName(full)]; ok {
			// наследник перекрывает свойство предка в том же слоте
			prop.Slot = slot
			schema.Properties[slot] = prop
		} else {
			prop.Slot = len(schema.Properties)
			schema.Properties = append(schema.Properties, prop)
			index[shortName(full)] = prop.Slot
		}
		schema.byObject[obj] = prop.Slot
	}

	b.state[id] = black
	b.h.schemas[id] = schema
	return schema, nil
}

// Schema возвращает плоскую схему класса
func (h *Hierarchy) Schema(classID int32) (*Schema, error) {
	s, ok := h.schemas[classID]
	if !ok {
		return nil, decodeerr.New(decodeerr.Unresolvable, "class %d is not in the class table", classID)
	}
	return s, nil
}

// ClassByName возвращает id класса по имени
func (h *Hierarchy) ClassByName(name string) (int32, bool) {
	id, ok := h.byName[name]
	return id, ok
}

// Name возвращает имя класса
func (h *Hierarchy) Name(classID int32) (string, bool) {
	name, ok := h.names[classID]
	return name, ok
}

// Parent возвращает родителя класса, если он есть
func (h *Hierarchy) Parent(classID int32) (int32, bool) {
	parent, ok := h.parents[classID]
	if !ok || parent < 0 {
		return 0, false
	}
	if _, known := h.names[parent]; !known {
		return 0, false
	}
	return parent, true
}

// Ancestors возвращает цепочку предков от ближайшего к корню
func (h *Hierarchy) Ancestors(classID int32) []int32 {
	var chain []int32
	seen := map[int32]bool{classID: true}
	for {
		parent, ok := h.Parent(classID)
		if !ok || seen[parent] {
			return chain
		}
		seen[parent] = true
		chain = append(chain, parent)
		classID = parent
	}
}

// Classes возвращает таблицу классов, упорядоченную по id
func (h *Hierarchy) Classes() []ClassIndex {
	out := append([]ClassIndex(nil), h.classes...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
