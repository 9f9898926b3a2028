package network

import (
	"github.com/levelonedev/boxcars/internal/attributes"
)

// Highlight маркер, привязанный к актору (есть не во всех версиях)
type Highlight struct {
	ActorID int32
	Kind    uint8
}

// Spawn создание или повторное открытие актора
type Spawn struct {
	ActorID   int32
	New       bool
	ObjectID  int32
	ClassID   int32
	ClassName string
	NameID    *int32
	Name      string

	// Начальная траектория; nil, если класс её не передаёт
	Location *attributes.Vector3i
	Rotation *attributes.Rotation
}

// UpdatedAttribute изменённый в кадре атрибут
type UpdatedAttribute struct {
	StreamID int32
	Name     string
	Kind     attributes.Kind
	Value    attributes.Value
}

// Update изменения одного актора за кадр
type Update struct {
	ActorID    int32
	Attributes []UpdatedAttribute
}

// Frame один кадр сетевого потока
type Frame struct {
	Time       float32
	Delta      float32
	Highlights []Highlight
	Spawns     []Spawn
	Updates    []Update
	Deletes    []int32
}

// Diagnostic мягкое замечание декодера, не прерывающее разбор
type Diagnostic struct {
	Frame     int
	BitOffset int64
	ActorID   int32
	Msg       string
}
