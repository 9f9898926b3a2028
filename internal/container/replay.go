// Package container разбирает внешний контейнер файла реплея: заголовок со
// свойствами, тело с таблицами и сырые данные сетевого потока.
package container

import (
	"fmt"
	"strings"

	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/levelonedev/boxcars/internal/logging"
	"github.com/levelonedev/boxcars/internal/network"
)

// CrcCheck когда проверять контрольные суммы секций
type CrcCheck int

const (
	// CrcOnError проверять только если разбор секции не удался
	CrcOnError CrcCheck = iota
	CrcAlways
	CrcNever
)

var crcCheckNames = map[CrcCheck]string{
	CrcOnError: "on-error",
	CrcAlways:  "always",
	CrcNever:   "never",
}

func (c CrcCheck) String() string { return crcCheckNames[c] }

// Set разбирает значение флага
func (c *CrcCheck) Set(s string) error {
	for k, name := range crcCheckNames {
		if strings.EqualFold(s, name) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown crc check mode %q (always, never, on-error)", s)
}

// Type имя типа для справки флагов
func (c *CrcCheck) Type() string { return "crc-check" }

// NetworkParse когда декодировать сетевой поток
type NetworkParse int

const (
	// NetworkIgnoreOnError декодировать, при ошибке сохранить её и вернуть реплей без кадров
	NetworkIgnoreOnError NetworkParse = iota
	NetworkAlways
	NetworkNever
)

var networkParseNames = map[NetworkParse]string{
	NetworkIgnoreOnError: "ignore-on-error",
	NetworkAlways:        "always",
	NetworkNever:         "never",
}

func (n NetworkParse) String() string { return networkParseNames[n] }

// Set разбирает значение флага
func (n *NetworkParse) Set(s string) error {
	for k, name := range networkParseNames {
		if strings.EqualFold(s, name) {
			*n = k
			return nil
		}
	}
	return fmt.Errorf("unknown network parse mode %q (always, never, ignore-on-error)", s)
}

// Type имя типа для справки флагов
func (n *NetworkParse) Type() string { return "network-parse" }

// Options настройки разбора
type Options struct {
	Crc     CrcCheck
	Network NetworkParse
	Decode  network.Options
}

// Replay разобранный реплей
type Replay struct {
	HeaderSize  int32
	HeaderCRC   uint32
	Header      *Header
	ContentSize int32
	ContentCRC  uint32
	Body        *Body

	// Network кадры сетевого потока; nil, если поток не декодировался
	Network *network.Result
	// NetworkErr ошибка сетевого потока в режиме NetworkIgnoreOnError
	NetworkErr error
}

// sectionError дополняет ошибку названием секции и смещением
func sectionError(section string, offset int64, err error) error {
	cat := decodeerr.CategoryOf(err)
	if cat == 0 {
		cat = decodeerr.Integrity
	}
	e := decodeerr.At(cat, offset*8, "could not decode replay %s at offset (%d)", section, offset)
	e.Err = err
	return e
}

// Parse разбирает файл реплея
func Parse(data []byte, opts Options) (*Replay, error) {
	log := logging.GetContainerLogger()
	r := newReader(data, 0)
	rp := &Replay{}

	headerData, err := section(r, "header", &rp.HeaderSize, &rp.HeaderCRC)
	if err != nil {
		return nil, err
	}
	rp.Header, err = checked(opts.Crc, "header", headerData, rp.HeaderCRC, func() (*Header, error) {
		hr := newReader(headerData.data, headerData.base)
		h, err := parseHeader(hr)
		if err != nil {
			return nil, sectionError("header", hr.Offset(), err)
		}
		return h, nil
	})
	if err != nil {
		return nil, err
	}

	contentData, err := section(r, "content", &rp.ContentSize, &rp.ContentCRC)
	if err != nil {
		return nil, err
	}
	rp.Body, err = checked(opts.Crc, "body", contentData, rp.ContentCRC, func() (*Body, error) {
		return parseBody(newReader(contentData.data, contentData.base))
	})
	if err != nil {
		return nil, err
	}

	log.Debug("replay %s: %d objects, %d net caches, %d bytes of network data",
		rp.Header.Version(), len(rp.Body.Objects), len(rp.Body.NetCache), len(rp.Body.NetworkData))

	switch opts.Network {
	case NetworkAlways:
		if rp.Network, err = network.Decode(rp.NetworkTables(), opts.Decode); err != nil {
			return nil, err
		}
	case NetworkIgnoreOnError:
		rp.Network, rp.NetworkErr = network.Decode(rp.NetworkTables(), opts.Decode)
		if rp.NetworkErr != nil {
			log.Warn("network stream skipped: %v", rp.NetworkErr)
		}
	}
	return rp, nil
}

// sectionData данные секции и их абсолютное смещение
type sectionData struct {
	data []byte
	base int
}

func section(r *reader, name string, size *int32, crc *uint32) (sectionData, error) {
	start := r.Offset()
	var h sectionHeader
	if err := r.unpack(&h, 8); err != nil {
		return sectionData{}, sectionError(name+" size", start, err)
	}
	*size, *crc = h.Size, h.CRC

	base := int(r.Offset())
	if h.Size < 0 || int64(h.Size) > r.RemainingBytes() {
		return sectionData{}, sectionError(name+" data", int64(base),
			decodeerr.At(decodeerr.ResourceLimit, int64(base)*8, "section of size %d is too large", h.Size))
	}
	data, _ := r.take(int(h.Size))
	return sectionData{data: data, base: base}, nil
}

// checked разбирает секцию и проверяет её контрольную сумму согласно режиму
func checked[T any](mode CrcCheck, name string, sd sectionData, want uint32, parse func() (T, error)) (T, error) {
	var zero T
	if mode == CrcAlways {
		if got := CRC(sd.data); got != want {
			return zero, crcMismatch(name, sd, want, got)
		}
	}

	v, err := parse()
	if err != nil && mode == CrcOnError {
		if got := CRC(sd.data); got != want {
			e := decodeerr.New(decodeerr.Integrity,
				"failed to parse %s and crc check failed. Replay is corrupt", name)
			e.BitOffset = int64(sd.base) * 8
			e.Err = err
			return zero, e
		}
	}
	if err != nil {
		return zero, err
	}
	return v, nil
}

func crcMismatch(name string, sd sectionData, want, got uint32) error {
	return decodeerr.At(decodeerr.Integrity, int64(sd.base)*8,
		"%s crc mismatch. Expected %d but received %d", name, want, got)
}

// NetworkTables собирает входные таблицы декодера сетевого потока
func (rp *Replay) NetworkTables() *network.Tables {
	maxChannels := int32(network.DefaultMaxChannels)
	if v, ok := rp.Header.Props.Int("MaxChannels"); ok && v > 0 {
		maxChannels = v
	}
	frames, _ := rp.Header.Props.Int("NumFrames")
	if frames < 0 {
		frames = 0
	}

	return &network.Tables{
		Classes:     rp.Body.Classes,
		Objects:     rp.Body.Objects,
		Names:       rp.Body.Names,
		NetCache:    rp.Body.NetCache,
		Version:     rp.Header.Version(),
		MaxChannels: maxChannels,
		NetworkData: rp.Body.NetworkData,
		FrameCount:  int(frames),
	}
}
