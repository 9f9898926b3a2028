package container

import (
	"github.com/levelonedev/boxcars/internal/classes"
	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/levelonedev/boxcars/internal/netcache"
)

// DebugInfo отладочная запись
type DebugInfo struct {
	Frame int32
	User  string
	Text  string
}

// TickMark отметка на шкале времени (гол, сейв и т.п.)
type TickMark struct {
	Description string
	Frame       int32
}

// Body тело реплея
type Body struct {
	Levels      []string
	KeyFrames   []KeyFrame
	NetworkData []byte
	DebugInfo   []DebugInfo
	TickMarks   []TickMark
	Packages    []string
	Objects     []string
	Names       []string
	Classes     []classes.ClassIndex
	NetCache    []netcache.Declaration
}

// bodyStep одна секция тела
type bodyStep struct {
	name  string
	parse func(r *reader, b *Body) error
}

var bodySteps = []bodyStep{
	{"levels", func(r *reader, b *Body) (err error) { b.Levels, err = r.textList(); return }},
	{"keyframes", parseKeyFrames},
	{"network data", parseNetworkData},
	{"debug info", parseDebugInfo},
	{"tickmarks", parseTickMarks},
	{"packages", func(r *reader, b *Body) (err error) { b.Packages, err = r.textList(); return }},
	{"objects", func(r *reader, b *Body) (err error) { b.Objects, err = r.textList(); return }},
	{"names", func(r *reader, b *Body) (err error) { b.Names, err = r.textList(); return }},
	{"class index", parseClassIndex},
	{"net cache", parseNetCache},
}

func parseBody(r *reader) (*Body, error) {
	var b Body
	for _, step := range bodySteps {
		if err := step.parse(r, &b); err != nil {
			return nil, sectionError(step.name, r.Offset(), err)
		}
	}
	return &b, nil
}

func parseKeyFrames(r *reader, b *Body) error {
	n, err := r.count(sizeKeyFrame)
	if err != nil {
		return err
	}
	b.KeyFrames = make([]KeyFrame, n)
	for i := range b.KeyFrames {
		if err := r.unpack(&b.KeyFrames[i], sizeKeyFrame); err != nil {
			return err
		}
	}
	return nil
}

func parseNetworkData(r *reader, b *Body) error {
	start := r.Position()
	size, err := r.ReadI32()
	if err != nil {
		return err
	}
	if size < 0 || int64(size) > r.RemainingBytes() {
		return decodeerr.At(decodeerr.ResourceLimit, start, "network data of size %d is too large", size)
	}
	b.NetworkData, err = r.ReadBytes(int(size))
	return err
}

func parseDebugInfo(r *reader, b *Body) error {
	n, err := r.count(sizeDebugInfo)
	if err != nil {
		return err
	}
	b.DebugInfo = make([]DebugInfo, 0, n)
	for i := 0; i < n; i++ {
		var d DebugInfo
		if d.Frame, err = r.ReadI32(); err != nil {
			return err
		}
		if d.User, err = r.text(); err != nil {
			return err
		}
		if d.Text, err = r.text(); err != nil {
			return err
		}
		b.DebugInfo = append(b.DebugInfo, d)
	}
	return nil
}

func parseTickMarks(r *reader, b *Body) error {
	n, err := r.count(sizeTickMark)
	if err != nil {
		return err
	}
	b.TickMarks = make([]TickMark, 0, n)
	for i := 0; i < n; i++ {
		var tm TickMark
		if tm.Description, err = r.text(); err != nil {
			return err
		}
		if tm.Frame, err = r.ReadI32(); err != nil {
			return err
		}
		b.TickMarks = append(b.TickMarks, tm)
	}
	return nil
}

func parseClassIndex(r *reader, b *Body) error {
	n, err := r.count(sizeClassIdx)
	if err != nil {
		return err
	}
	b.Classes = make([]classes.ClassIndex, 0, n)
	for i := 0; i < n; i++ {
		var ci classes.ClassIndex
		if ci.Name, err = r.text(); err != nil {
			return err
		}
		if ci.ID, err = r.ReadI32(); err != nil {
			return err
		}
		b.Classes = append(b.Classes, ci)
	}
	return nil
}

func parseNetCache(r *reader, b *Body) error {
	n, err := r.count(sizeCacheHead)
	if err != nil {
		return err
	}
	b.NetCache = make([]netcache.Declaration, 0, n)
	for i := 0; i < n; i++ {
		var head cacheHead
		if err := r.unpack(&head, 12); err != nil {
			return err
		}
		props, err := r.count(sizeCacheProp)
		if err != nil {
			return err
		}
		d := netcache.Declaration{
			ClassID:    head.Object,
			ParentID:   head.Parent,
			CacheID:    head.Cache,
			Properties: make([]netcache.PropertyMapping, 0, props),
		}
		for j := 0; j < props; j++ {
			var p cacheProp
			if err := r.unpack(&p, sizeCacheProp); err != nil {
				return err
			}
			d.Properties = append(d.Properties, netcache.PropertyMapping{ObjectID: p.Object, StreamID: p.Stream})
		}
		b.NetCache = append(b.NetCache, d)
	}
	return nil
}
