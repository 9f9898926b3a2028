package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/levelonedev/boxcars/internal/logging"
	nats "github.com/nats-io/nats.go"
)

// NATSBus реализует EventBus поверх core NATS.
// Subject события равен его EventType.
type NATSBus struct {
	nc        *nats.Conn
	published uint64
	consumed  uint64
	dropped   uint64
}

// NewNATSBus подключается к NATS (nats://127.0.0.1:4222).
func NewNATSBus(url string) (*NATSBus, error) {
	nc, err := nats.Connect(url,
		nats.Name("boxcars"),
		nats.Timeout(3*time.Second),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Warn("NATS отключён: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSBus{nc: nc}, nil
}

// Publish сериализует Envelope в JSON и публикует в subject ev.EventType.
func (nb *NATSBus) Publish(ctx context.Context, ev *Envelope) error {
	if err := ctx.Err(); err != nil {
		atomic.AddUint64(&nb.dropped, 1)
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := nb.nc.Publish(ev.EventType, data); err != nil {
		atomic.AddUint64(&nb.dropped, 1)
		return fmt.Errorf("nats publish %s: %w", ev.EventType, err)
	}
	atomic.AddUint64(&nb.published, 1)
	return nil
}

// Subscribe подписывается на один тип событий или на все ("replay.>").
func (nb *NATSBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	subj := "replay.>"
	if len(f.Types) == 1 {
		subj = f.Types[0]
	}

	natSub, err := nb.nc.Subscribe(subj, func(msg *nats.Msg) {
		var ev Envelope
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			atomic.AddUint64(&nb.dropped, 1)
			return
		}
		if !matchFilter(&ev, f) {
			return
		}
		h(ctx, &ev)
		atomic.AddUint64(&nb.consumed, 1)
	})
	if err != nil {
		return nil, err
	}
	return &natsSub{natSub}, nil
}

// natsSub обёртка вокруг *nats.Subscription
type natsSub struct {
	s *nats.Subscription
}

func (n *natsSub) Unsubscribe() {
	_ = n.s.Unsubscribe()
}

// Metrics возвращает текущие метрики.
func (nb *NATSBus) Metrics() Stats {
	return Stats{
		Published: atomic.LoadUint64(&nb.published),
		Consumed:  atomic.LoadUint64(&nb.consumed),
		Dropped:   atomic.LoadUint64(&nb.dropped),
		InFlight:  0, // буфер исходящих сообщений у клиента NATS
	}
}

// Close отправляет буферизованные сообщения и закрывает соединение
func (nb *NATSBus) Close() error {
	if err := nb.nc.Flush(); err != nil {
		logging.Warn("NATS flush: %v", err)
	}
	return nb.nc.Drain()
}
