// Package eventbus публикует события о разобранных реплеях.
package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Envelope описывает универсальный контейнер события.
type Envelope struct {
	ID            string            `json:"id"`             // UUID события
	Timestamp     time.Time         `json:"timestamp"`      // Время создания (UTC)
	Source        string            `json:"source"`         // Имя сервиса-источника
	EventType     string            `json:"event_type"`     // Совпадает с subject NATS
	Version       int               `json:"version"`        // Схема полезной нагрузки
	CorrelationID string            `json:"correlation_id"` // Например, id записи в архиве
	Payload       []byte            `json:"payload"`        // JSON сводки
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEnvelope создаёт событие с новым UUID
func NewEnvelope(eventType string, payload []byte) *Envelope {
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    "boxcars",
		EventType: eventType,
		Version:   1,
		Payload:   payload,
		Metadata:  make(map[string]string),
	}
}

// Filter позволяет подписаться только на нужные события.
type Filter struct {
	Types []string // Если пусто, все типы.
}

// Subscription возвращается при подписке; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события.
type Handler func(ctx context.Context, ev *Envelope)

// Stats агрегированные метрики шины.
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// EventBus абстракция шины событий (NATS или in-memory).
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close() error
}

//================ In-Memory implementation =================//

type memoryBus struct {
	mu          sync.RWMutex
	subscribers map[int]subscriber
	nextID      int
	stats       Stats
	buffer      chan *Envelope
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

type subscriber struct {
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewMemoryBus создаёт in-memory шину с указанным буфером.
// При переполнении буфера Publish ждёт освобождения места или отмены контекста.
func NewMemoryBus(capacity int) EventBus {
	mb := &memoryBus{
		subscribers: make(map[int]subscriber),
		buffer:      make(chan *Envelope, capacity),
	}
	mb.wg.Add(1)
	go mb.dispatchLoop()
	return mb
}

func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	select {
	case mb.buffer <- ev:
		mb.mu.Lock()
		mb.stats.Published++
		mb.mu.Unlock()
		return nil
	case <-ctx.Done():
		mb.mu.Lock()
		mb.stats.Dropped++
		mb.mu.Unlock()
		return ctx.Err()
	}
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	mb.mu.Lock()
	id := mb.nextID
	mb.nextID++
	cctx, cancel := context.WithCancel(ctx)
	mb.subscribers[id] = subscriber{filter: f, handler: h, ctx: cctx, cancel: cancel}
	mb.mu.Unlock()

	return &memSub{bus: mb, id: id}, nil
}

func (mb *memoryBus) Metrics() Stats {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	s := mb.stats
	s.InFlight = len(mb.buffer)
	return s
}

// Close дожидается доставки всех событий из буфера
func (mb *memoryBus) Close() error {
	mb.closeOnce.Do(func() {
		close(mb.buffer)
		mb.wg.Wait()
	})
	return nil
}

// dispatchLoop рассылает события подписчикам по порядку публикации.
func (mb *memoryBus) dispatchLoop() {
	defer mb.wg.Done()
	for ev := range mb.buffer {
		mb.mu.RLock()
		subs := make([]subscriber, 0, len(mb.subscribers))
		for _, sub := range mb.subscribers {
			subs = append(subs, sub)
		}
		mb.mu.RUnlock()

		for _, sub := range subs {
			if !matchFilter(ev, sub.filter) || sub.ctx.Err() != nil {
				continue
			}
			sub.handler(sub.ctx, ev)
			mb.mu.Lock()
			mb.stats.Consumed++
			mb.mu.Unlock()
		}
	}
}

func matchFilter(ev *Envelope, f Filter) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if t == ev.EventType {
			return true
		}
	}
	return false
}

type memSub struct {
	bus *memoryBus
	id  int
}

func (s *memSub) Unsubscribe() {
	s.bus.mu.Lock()
	if sub, ok := s.bus.subscribers[s.id]; ok {
		sub.cancel()
		delete(s.bus.subscribers, s.id)
	}
	s.bus.mu.Unlock()
}
