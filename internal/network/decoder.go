package network

import (
	"fmt"
	"math"

	"github.com/levelonedev/boxcars/internal/attributes"
	"github.com/levelonedev/boxcars/internal/bitstream"
	"github.com/levelonedev/boxcars/internal/classes"
	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/levelonedev/boxcars/internal/logging"
	"github.com/levelonedev/boxcars/internal/netcache"
	"github.com/levelonedev/boxcars/internal/version"
)

var (
	sinceNameID     = version.New(868, 14, 0)
	sinceHighlights = version.New(868, 22, 7)
)

// Размеры полей кадра в битах
const (
	timeBits      = 32
	countBits     = 32
	highlightBits = 8
)

// Session разрешённые таблицы одного вызова декодирования
type Session struct {
	version     version.Version
	maxChannels uint64
	names       []string

	hierarchy *classes.Hierarchy
	caches    *netcache.Caches
	objects   *classes.ObjectResolver
	codecs    *attributes.Table

	hasNameID     bool
	hasHighlights bool
}

// NewSession строит иерархию классов, сетевые кеши и таблицу кодеков
func NewSession(t *Tables, opts Options) (*Session, error) {
	parents := t.Parents
	if parents == nil {
		parents = netcache.DeriveParents(t.NetCache)
	}

	h, err := classes.Build(t.Classes, t.Objects, parents, opts.Kinds)
	if err != nil {
		return nil, err
	}
	caches, err := netcache.Resolve(t.NetCache, h, t.Version)
	if err != nil {
		return nil, err
	}

	registry := opts.Registry
	if registry == nil {
		registry = attributes.Builtin()
	}

	maxChannels := t.MaxChannels
	if maxChannels <= 0 {
		maxChannels = DefaultMaxChannels
	}

	return &Session{
		version:       t.Version,
		maxChannels:   uint64(maxChannels),
		names:         t.Names,
		hierarchy:     h,
		caches:        caches,
		objects:       classes.NewObjectResolver(t.Objects, h),
		codecs:        registry.Resolve(t.Version),
		hasNameID:     t.Version.AtLeast(sinceNameID),
		hasHighlights: t.Version.AtLeast(sinceHighlights),
	}, nil
}

// Hierarchy возвращает иерархию классов сессии
func (s *Session) Hierarchy() *classes.Hierarchy { return s.hierarchy }

// Caches возвращает разрешённые сетевые кеши
func (s *Session) Caches() *netcache.Caches { return s.caches }

// actorIDMax граница id актора для ReadBitsMax
func (s *Session) actorIDMax() uint64 { return s.maxChannels + 1 }

func (s *Session) actorIDBits() uint64 { return uint64(bitstream.MinBitsMax(s.actorIDMax())) }

// MinFrameBits минимальный размер пустого кадра
func (s *Session) MinFrameBits() uint64 {
	n := uint64(2*timeBits + 3*countBits)
	if s.hasHighlights {
		n += highlightBits
	}
	return n
}

// FrameDecoder декодирует кадры по одному и ведёт таблицу живых акторов
type FrameDecoder struct {
	s           *Session
	live        *liveTable
	strict      bool
	log         *logging.Logger
	diagnostics []Diagnostic
}

// NewFrameDecoder создаёт декодер кадров для сессии
func NewFrameDecoder(s *Session, opts Options) *FrameDecoder {
	log := opts.Logger
	if log == nil {
		log = logging.GetNetworkLogger()
	}
	return &FrameDecoder{
		s:      s,
		live:   newLiveTable(),
		strict: opts.StrictDeletes,
		log:    log,
	}
}

// Actor возвращает состояние живого актора
func (d *FrameDecoder) Actor(id int32) (*ActorState, bool) {
	return d.live.get(id)
}

// Live возвращает id живых акторов по возрастанию
func (d *FrameDecoder) Live() []int32 {
	return d.live.ids()
}

// Diagnostics возвращает накопленные мягкие замечания
func (d *FrameDecoder) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), d.diagnostics...)
}

// fail дополняет ошибку контекстом кадра и позиции
func fail(err error, frame int, offset int64) *decodeerr.Error {
	return decodeerr.As(err, decodeerr.Integrity).WithFrame(frame).WithOffset(offset)
}

// Decode читает один кадр с текущей позиции
func (d *FrameDecoder) Decode(r *bitstream.Reader, index int) (Frame, error) {
	var f Frame
	var err error

	start := r.Position()
	if f.Time, err = r.ReadF32(); err != nil {
		return f, fail(err, index, start)
	}
	if f.Delta, err = r.ReadF32(); err != nil {
		return f, fail(err, index, start)
	}

	if d.s.hasHighlights {
		if f.Highlights, err = d.highlights(r, index); err != nil {
			return f, err
		}
	}
	if f.Spawns, err = d.spawns(r, index); err != nil {
		return f, err
	}
	if f.Updates, err = d.updates(r, index); err != nil {
		return f, err
	}
	if f.Deletes, err = d.deletes(r, index); err != nil {
		return f, err
	}
	return f, nil
}

// count читает объявленное число элементов и проверяет, что они помещаются в остаток
func (d *FrameDecoder) count(r *bitstream.Reader, index int, bits uint, minBits uint64, what string) (int, error) {
	start := r.Position()
	n, err := r.ReadBits(bits)
	if err != nil {
		return 0, fail(err, index, start)
	}
	if err := r.EnsureCount(n, minBits, what); err != nil {
		return 0, fail(err, index, start)
	}
	return int(n), nil
}

func (d *FrameDecoder) actorID(r *bitstream.Reader) (int32, error) {
	id, err := r.ReadBitsMax(d.s.actorIDMax())
	return int32(id), err
}

func (d *FrameDecoder) highlights(r *bitstream.Reader, index int) ([]Highlight, error) {
	n, err := d.count(r, index, highlightBits, d.s.actorIDBits()+8, "highlight")
	if err != nil || n == 0 {
		return nil, err
	}

	out := make([]Highlight, 0, n)
	for i := 0; i < n; i++ {
		start := r.Position()
		id, err := d.actorID(r)
		if err != nil {
			return nil, fail(err, index, start)
		}
		kind, err := r.ReadU8()
		if err != nil {
			return nil, fail(err, index, start)
		}
		out = append(out, Highlight{ActorID: id, Kind: kind})
	}
	return out, nil
}

func (d *FrameDecoder) spawns(r *bitstream.Reader, index int) ([]Spawn, error) {
	n, err := d.count(r, index, countBits, d.s.actorIDBits()+1, "spawn")
	if err != nil || n == 0 {
		return nil, err
	}

	out := make([]Spawn, 0, n)
	for i := 0; i < n; i++ {
		sp, err := d.spawn(r, index)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, nil
}

func (d *FrameDecoder) spawn(r *bitstream.Reader, index int) (Spawn, error) {
	start := r.Position()
	id, err := d.actorID(r)
	if err != nil {
		return Spawn{}, fail(err, index, start)
	}
	isNew, err := r.ReadBit()
	if err != nil {
		return Spawn{}, fail(err, index, start).WithActor(id)
	}

	if !isNew {
		// повторное открытие канала живого актора, без данных
		st, ok := d.live.get(id)
		if !ok {
			return Spawn{}, decodeerr.At(decodeerr.Unresolvable, start,
				"reopen of actor %d which is not live", id).WithActor(id).WithFrame(index)
		}
		return Spawn{
			ActorID:   id,
			ObjectID:  st.ObjectID,
			ClassID:   st.ClassID,
			ClassName: st.ClassName,
			NameID:    st.NameID,
			Name:      st.Name,
		}, nil
	}

	sp := Spawn{ActorID: id, New: true}
	if d.s.hasNameID {
		nameID, err := r.ReadI32()
		if err != nil {
			return Spawn{}, fail(err, index, start).WithActor(id)
		}
		sp.NameID = &nameID
		if nameID >= 0 && int(nameID) < len(d.s.names) {
			sp.Name = d.s.names[nameID]
		}
	}
	if _, err := r.ReadBit(); err != nil {
		return Spawn{}, fail(err, index, start).WithActor(id)
	}

	objStart := r.Position()
	if sp.ObjectID, err = r.ReadI32(); err != nil {
		return Spawn{}, fail(err, index, start).WithActor(id)
	}
	if sp.ClassID, err = d.s.objects.ClassOf(sp.ObjectID); err != nil {
		return Spawn{}, fail(err, index, objStart).WithActor(id)
	}
	sp.ClassName, _ = d.s.hierarchy.Name(sp.ClassID)

	traj := d.s.hierarchy.Trajectory(sp.ClassID)
	if traj.HasLocation() {
		at := r.Position()
		v, err := d.s.codecs.Decode(attributes.KindLocation, r)
		if err != nil {
			return Spawn{}, fail(err, index, at).WithActor(id).WithClass(sp.ClassName)
		}
		l, ok := v.(attributes.Location)
		if !ok {
			return Spawn{}, decodeerr.At(decodeerr.Integrity, at,
				"location codec returned %T", v).WithActor(id).WithFrame(index).WithClass(sp.ClassName)
		}
		loc := attributes.Vector3i(l)
		sp.Location = &loc
	}
	if traj.HasRotation() {
		at := r.Position()
		v, err := d.s.codecs.Decode(attributes.KindRotation, r)
		if err != nil {
			return Spawn{}, fail(err, index, at).WithActor(id).WithClass(sp.ClassName)
		}
		rot, ok := v.(attributes.Rotation)
		if !ok {
			return Spawn{}, decodeerr.At(decodeerr.Integrity, at,
				"rotation codec returned %T", v).WithActor(id).WithFrame(index).WithClass(sp.ClassName)
		}
		sp.Rotation = &rot
	}

	if _, wasLive := d.live.get(id); wasLive {
		d.log.Debug("actor %d respawned as %s in frame %d", id, sp.ClassName, index)
	}
	st := newActorState(id, sp.ObjectID, sp.ClassID, sp.ClassName)
	st.NameID = sp.NameID
	st.Name = sp.Name
	d.live.put(st)
	return sp, nil
}

func (d *FrameDecoder) updates(r *bitstream.Reader, index int) ([]Update, error) {
	n, err := d.count(r, index, countBits, d.s.actorIDBits()+1, "update")
	if err != nil || n == 0 {
		return nil, err
	}

	out := make([]Update, 0, n)
	for i := 0; i < n; i++ {
		u, err := d.update(r, index)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (d *FrameDecoder) update(r *bitstream.Reader, index int) (Update, error) {
	start := r.Position()
	id, err := d.actorID(r)
	if err != nil {
		return Update{}, fail(err, index, start)
	}
	st, ok := d.live.get(id)
	if !ok {
		return Update{}, decodeerr.At(decodeerr.Unresolvable, start,
			"update of actor %d which is not live", id).WithActor(id).WithFrame(index)
	}
	if st.cache == nil {
		if st.cache, err = d.s.caches.ForClass(st.ClassID); err != nil {
			return Update{}, fail(err, index, start).WithActor(id).WithClass(st.ClassName)
		}
	}

	u := Update{ActorID: id}
	var streamMax uint64
	if m := st.cache.MaxStreamID(); m >= 0 {
		streamMax = uint64(m) + 1
	}
	for {
		at := r.Position()
		more, err := r.ReadBit()
		if err != nil {
			return Update{}, fail(err, index, at).WithActor(id).WithClass(st.ClassName)
		}
		if !more {
			break
		}

		at = r.Position()
		raw, err := r.ReadBitsMax(streamMax)
		if err != nil {
			return Update{}, fail(err, index, at).WithActor(id).WithClass(st.ClassName)
		}
		if raw > math.MaxInt32 {
			return Update{}, decodeerr.At(decodeerr.Unresolvable, at,
				"stream id %d is out of range", raw).WithActor(id).WithFrame(index).WithClass(st.ClassName)
		}
		attr, err := st.cache.Lookup(int32(raw))
		if err != nil {
			return Update{}, fail(err, index, at).WithActor(id).WithClass(st.ClassName)
		}

		at = r.Position()
		val, err := d.s.codecs.Decode(attr.Kind, r)
		if err != nil {
			return Update{}, fail(err, index, at).WithActor(id).WithClass(st.ClassName).WithAttribute(attr.Name)
		}

		st.Attributes[attr.Name] = val
		u.Attributes = append(u.Attributes, UpdatedAttribute{
			StreamID: attr.StreamID,
			Name:     attr.Name,
			Kind:     attr.Kind,
			Value:    val,
		})
	}
	return u, nil
}

func (d *FrameDecoder) deletes(r *bitstream.Reader, index int) ([]int32, error) {
	n, err := d.count(r, index, countBits, d.s.actorIDBits(), "delete")
	if err != nil || n == 0 {
		return nil, err
	}

	out := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		start := r.Position()
		id, err := d.actorID(r)
		if err != nil {
			return nil, fail(err, index, start)
		}
		if !d.live.remove(id) {
			if d.strict {
				return nil, decodeerr.At(decodeerr.Unresolvable, start,
					"delete of actor %d which is not live", id).WithActor(id).WithFrame(index)
			}
			d.note(index, start, id, fmt.Sprintf("delete of actor %d which is not live", id))
		}
		out = append(out, id)
	}
	return out, nil
}

func (d *FrameDecoder) note(frame int, offset int64, actor int32, msg string) {
	d.diagnostics = append(d.diagnostics, Diagnostic{Frame: frame, BitOffset: offset, ActorID: actor, Msg: msg})
	d.log.WithFields(logging.WARN, map[string]interface{}{
		"frame":  frame,
		"offset": offset,
		"actor":  actor,
	}, "%s", msg)
}
