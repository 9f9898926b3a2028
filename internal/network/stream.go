// Package network декодирует сетевой поток реплея: кадры с созданием,
// обновлением и удалением акторов и значениями их атрибутов.
package network

import (
	"github.com/levelonedev/boxcars/internal/attributes"
	"github.com/levelonedev/boxcars/internal/bitstream"
	"github.com/levelonedev/boxcars/internal/classes"
	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/levelonedev/boxcars/internal/logging"
	"github.com/levelonedev/boxcars/internal/netcache"
	"github.com/levelonedev/boxcars/internal/version"
)

// DefaultMaxChannels число каналов, если заголовок его не объявляет
const DefaultMaxChannels = 1023

// Tables входные таблицы сетевого потока
type Tables struct {
	Classes []classes.ClassIndex
	Objects []string
	Names   []string
	// Parents родители классов; nil - выводятся из наслоения кешей
	Parents  map[int32]int32
	NetCache []netcache.Declaration

	Version     version.Version
	MaxChannels int32

	NetworkData []byte
	// FrameCount объявленное число кадров; 0 - читать до конца буфера
	FrameCount int
}

// Options настройки декодирования
type Options struct {
	// StrictDeletes превращает удаление неживого актора в ошибку
	StrictDeletes bool
	// MaxFrames ограничение числа кадров; 0 - без ограничения
	MaxFrames int

	Kinds    classes.KindFunc
	Registry *attributes.Registry
	Logger   *logging.Logger
}

// Result результат декодирования потока
type Result struct {
	Frames      []Frame
	Diagnostics []Diagnostic
	// Live акторы, оставшиеся живыми после последнего кадра
	Live []int32
}

// Decode декодирует весь сетевой поток. Возвращает все кадры либо первую
// ошибку с индексом кадра и битовым смещением.
func Decode(t *Tables, opts Options) (*Result, error) {
	s, err := NewSession(t, opts)
	if err != nil {
		return nil, err
	}
	return decodeFrames(s, t, opts)
}

func decodeFrames(s *Session, t *Tables, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logging.GetNetworkLogger()
	}

	r := bitstream.NewReader(t.NetworkData)
	fd := NewFrameDecoder(s, opts)
	minFrame := s.MinFrameBits()

	var frames []Frame
	if t.FrameCount > 0 {
		if err := checkFrameCount(r, t.FrameCount, minFrame, opts.MaxFrames); err != nil {
			return nil, err
		}
		frames = make([]Frame, 0, t.FrameCount)
		for i := 0; i < t.FrameCount; i++ {
			f, err := fd.Decode(r, i)
			if err != nil {
				return nil, err
			}
			frames = append(frames, f)
		}
	} else {
		for i := 0; uint64(r.Remaining()) >= minFrame; i++ {
			if opts.MaxFrames > 0 && i >= opts.MaxFrames {
				return nil, decodeerr.At(decodeerr.ResourceLimit, r.Position(),
					"too many frames to decode: limit %d", opts.MaxFrames).WithFrame(i)
			}
			f, err := fd.Decode(r, i)
			if err != nil {
				return nil, err
			}
			frames = append(frames, f)
		}
	}

	log.Debug("decoded %d frames (version %s, %d bits unread)", len(frames), s.version, r.Remaining())
	return &Result{
		Frames:      frames,
		Diagnostics: fd.Diagnostics(),
		Live:        fd.Live(),
	}, nil
}

// checkFrameCount отклоняет объявленное число кадров, которое не помещается в буфер
func checkFrameCount(r *bitstream.Reader, count int, minFrame uint64, limit int) error {
	if limit > 0 && count > limit {
		return decodeerr.At(decodeerr.ResourceLimit, 0,
			"too many frames to decode: %d (limit %d)", count, limit)
	}
	if uint64(count) > uint64(r.Remaining())/minFrame {
		return decodeerr.At(decodeerr.ResourceLimit, 0,
			"too many frames to decode: %d frames need at least %d bits, %d remaining",
			count, uint64(count)*minFrame, r.Remaining())
	}
	return nil
}
