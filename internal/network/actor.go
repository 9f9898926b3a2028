package network

import (
	"sort"

	"github.com/levelonedev/boxcars/internal/attributes"
	"github.com/levelonedev/boxcars/internal/netcache"
)

// ActorState последнее известное состояние живого актора
type ActorState struct {
	ID        int32
	ObjectID  int32
	ClassID   int32
	ClassName string
	NameID    *int32
	Name      string

	// Attributes последние значения по полному имени свойства
	Attributes map[string]attributes.Value

	cache *netcache.Entry // разрешается при первом обновлении
}

func newActorState(id, objectID, classID int32, className string) *ActorState {
	return &ActorState{
		ID:         id,
		ObjectID:   objectID,
		ClassID:    classID,
		ClassName:  className,
		Attributes: make(map[string]attributes.Value),
	}
}

// Attribute возвращает последнее значение атрибута
func (a *ActorState) Attribute(name string) (attributes.Value, bool) {
	v, ok := a.Attributes[name]
	return v, ok
}

// liveTable таблица живых акторов
type liveTable struct {
	actors map[int32]*ActorState
}

func newLiveTable() *liveTable {
	return &liveTable{actors: make(map[int32]*ActorState)}
}

func (t *liveTable) get(id int32) (*ActorState, bool) {
	a, ok := t.actors[id]
	return a, ok
}

// put регистрирует актор; прежнее состояние с тем же id отбрасывается
func (t *liveTable) put(a *ActorState) {
	t.actors[a.ID] = a
}

func (t *liveTable) remove(id int32) bool {
	if _, ok := t.actors[id]; !ok {
		return false
	}
	delete(t.actors, id)
	return true
}

func (t *liveTable) ids() []int32 {
	ids := make([]int32, 0, len(t.actors))
	for id := range t.actors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
