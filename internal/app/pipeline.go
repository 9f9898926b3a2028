// Package app связывает разбор реплея с кешем, архивом, шиной событий,
// метриками и трассировкой.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/levelonedev/boxcars/internal/archive"
	"github.com/levelonedev/boxcars/internal/cache"
	"github.com/levelonedev/boxcars/internal/container"
	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/levelonedev/boxcars/internal/eventbus"
	"github.com/levelonedev/boxcars/internal/logging"
	"github.com/levelonedev/boxcars/internal/metrics"
	"github.com/levelonedev/boxcars/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultSubject subject событий о разобранных реплеях
const DefaultSubject = "replay.decoded"

// Deps необязательные интеграции конвейера; nil отключает соответствующий шаг
type Deps struct {
	Cache   cache.SummaryCache
	Archive *archive.Archive
	Bus     eventbus.EventBus
	Subject string
	Metrics *metrics.DecodeMetrics
}

// Pipeline разбирает реплеи и раздаёт результат интеграциям
type Pipeline struct {
	opts container.Options
	deps Deps
	mode string
	log  *logging.Logger
}

// NewPipeline создаёт конвейер
func NewPipeline(opts container.Options, deps Deps) *Pipeline {
	if deps.Subject == "" {
		deps.Subject = DefaultSubject
	}
	return &Pipeline{
		opts: opts,
		deps: deps,
		mode: ModeTag(opts),
		log:  logging.GetAppLogger(),
	}
}

// ModeTag описывает режимы разбора; входит в ключ кеша
func ModeTag(opts container.Options) string {
	tag := opts.Crc.String() + "/" + opts.Network.String()
	if opts.Decode.StrictDeletes {
		tag += "/strict"
	}
	if opts.Decode.MaxFrames > 0 {
		tag += fmt.Sprintf("/max%d", opts.Decode.MaxFrames)
	}
	return tag
}

// Mode возвращает метку режимов конвейера
func (p *Pipeline) Mode() string { return p.mode }

// ProcessFile читает и обрабатывает файл реплея
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*Summary, *container.Replay, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return p.Process(ctx, filepath.Base(path), data)
}

// Process разбирает реплей. Replay равен nil, если сводка взята из кеша.
func (p *Pipeline) Process(ctx context.Context, name string, data []byte) (*Summary, *container.Replay, error) {
	ctx, span := observability.StartSpan(ctx, "replay.process",
		attribute.String("replay.file", name),
		attribute.Int("replay.input_bytes", len(data)),
	)
	defer span.End()

	raw, compressed, err := Unwrap(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decompress")
		return nil, nil, err
	}

	sum := &Summary{
		File:       name,
		ContentCRC: container.CRC(raw),
		Mode:       p.mode,
		Compressed: compressed,
	}
	span.SetAttributes(attribute.String("replay.crc", fmt.Sprintf("%08x", sum.ContentCRC)))
	key := cache.SummaryKey(sum.ContentCRC, p.mode)

	if cached, ok := p.lookup(ctx, key); ok {
		cached.File = name
		span.SetAttributes(attribute.Bool("replay.cache_hit", true))
		return cached, nil, nil
	}

	start := time.Now()
	rp, err := p.parse(ctx, raw)
	elapsed := time.Since(start)

	if err != nil {
		sum.ErrorCategory = decodeerr.CategoryOf(err).String()
		p.observe(elapsed, len(raw), 0, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, sum.ErrorCategory)
		logging.LogDecodeError(name, err, raw, bitOffset(err))
		p.publish(ctx, sum, err)
		return sum, nil, err
	}

	summarize(sum, rp)
	if rp.NetworkErr != nil {
		logging.LogDecodeError(name+" network stream", rp.NetworkErr, rp.Body.NetworkData, bitOffset(rp.NetworkErr))
	}
	p.observe(elapsed, len(raw), sum.Frames, nil)
	span.SetAttributes(
		attribute.String("replay.version", sum.Version),
		attribute.Int("replay.frames", sum.Frames),
	)

	p.store(ctx, key, raw, sum)
	p.publish(ctx, sum, nil)
	return sum, rp, nil
}

func (p *Pipeline) parse(ctx context.Context, raw []byte) (*container.Replay, error) {
	_, span := observability.StartSpan(ctx, "replay.parse",
		attribute.String("crc_check", p.opts.Crc.String()),
		attribute.String("network_parse", p.opts.Network.String()),
	)
	defer span.End()

	rp, err := container.Parse(raw, p.opts)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if rp.NetworkErr != nil {
		span.AddEvent("network stream skipped")
	}
	return rp, nil
}

// lookup ищет сводку в кеше
func (p *Pipeline) lookup(ctx context.Context, key string) (*Summary, bool) {
	if p.deps.Cache == nil {
		return nil, false
	}
	data, err := p.deps.Cache.Get(ctx, key)
	if p.deps.Metrics != nil {
		p.deps.Metrics.ObserveCache(err == nil)
	}
	if err != nil {
		if !cache.IsCacheMiss(err) {
			p.log.Warn("Ошибка чтения кеша %s: %v", key, err)
		}
		return nil, false
	}

	var sum Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		p.log.Warn("Повреждённая запись кеша %s: %v", key, err)
		return nil, false
	}
	sum.FromCache = true
	p.log.Debug("Сводка %s взята из кеша", key)
	return &sum, true
}

// store сохраняет реплей в архив и сводку в кеш
func (p *Pipeline) store(ctx context.Context, key string, raw []byte, sum *Summary) {
	if p.deps.Archive != nil {
		if err := p.archive(raw, sum); err != nil {
			p.log.Warn("Не удалось сохранить реплей в архив: %v", err)
		}
	}

	if p.deps.Cache != nil {
		payload, err := json.Marshal(sum)
		if err == nil {
			err = p.deps.Cache.Set(ctx, key, payload)
		}
		if err != nil {
			p.log.Warn("Не удалось записать сводку в кеш: %v", err)
		}
	}
}

func (p *Pipeline) archive(raw []byte, sum *Summary) error {
	payload, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	id, existed, err := p.deps.Archive.Store(raw, sum.ContentCRC, payload)
	if err != nil {
		return err
	}
	if existed {
		p.log.Debug("Реплей %s уже в архиве", id)
	}
	sum.ArchiveID = id.String()
	return nil
}

// publish отправляет событие о результате разбора
func (p *Pipeline) publish(ctx context.Context, sum *Summary, decodeErr error) {
	if p.deps.Bus == nil {
		return
	}
	payload, err := json.Marshal(sum)
	if err != nil {
		p.log.Warn("Не удалось сериализовать событие: %v", err)
		return
	}

	ev := eventbus.NewEnvelope(p.deps.Subject, payload)
	ev.CorrelationID = sum.ArchiveID
	ev.Metadata["file"] = sum.File
	ev.Metadata["crc"] = fmt.Sprintf("%08x", sum.ContentCRC)
	if decodeErr != nil {
		ev.Metadata["result"] = sum.ErrorCategory
		ev.Metadata["error"] = decodeErr.Error()
	} else {
		ev.Metadata["result"] = "ok"
	}

	if err := p.deps.Bus.Publish(ctx, ev); err != nil {
		p.log.Warn("Не удалось опубликовать %s: %v", p.deps.Subject, err)
	}
}

// bitOffset смещение сбоя в битах, 0 если неизвестно
func bitOffset(err error) int64 {
	var de *decodeerr.Error
	if errors.As(err, &de) && de.BitOffset >= 0 {
		return de.BitOffset
	}
	return 0
}

func (p *Pipeline) observe(elapsed time.Duration, size, frames int, err error) {
	m := p.deps.Metrics
	if m == nil {
		return
	}
	m.ObserveDecode(elapsed, size, frames, err)
	if serr := m.SampleProcess(); serr != nil {
		p.log.Debug("gopsutil: %v", serr)
	}
}
