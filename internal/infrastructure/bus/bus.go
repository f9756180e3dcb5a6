// Package bus is an in-memory fanout for domain notifications. It is
// not durable; events exist to feed observers (metrics, logs), never to
// drive state changes.
package bus

import (
	"context"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"github.com/plantnet/backend/internal/domain/event"
)

type Bus struct {
	mu        sync.RWMutex
	subs      map[string][]event.Handler
	queue     chan event.Event
	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	log       *zap.Logger
}

func New(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subs:  make(map[string][]event.Handler),
		queue: make(chan event.Event, 256),
		done:  make(chan struct{}),
		log:   logger.With(zap.String("component", "event_bus")),
	}
}

func (b *Bus) Subscribe(eventName string, h event.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		go b.dispatchLoop(ctx)
		b.log.Info("event_bus_started")
	})
}

func (b *Bus) Stop() {
	b.stopOnce.Do(func() {
		close(b.queue)
		<-b.done
		b.log.Info("event_bus_stopped")
	})
}

// Publish never blocks the caller: when the queue is full the event is
// dropped with a warning.
func (b *Bus) Publish(ctx context.Context, e event.Event) {
	if e == nil {
		return
	}
	select {
	case b.queue <- e:
	default:
		b.log.Warn("event_dropped_queue_full", zap.String("event", e.EventName()))
	}
	_ = ctx
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for e := range b.queue {
		b.fanout(ctx, e)
	}
}

func (b *Bus) fanout(ctx context.Context, e event.Event) {
	name := e.EventName()

	b.mu.RLock()
	handlers := append([]event.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("event_handler_panic",
						zap.String("event", name),
						zap.Any("panic", r),
						zap.String("stack", string(debug.Stack())),
					)
				}
			}()
			h(ctx, e)
		}()
	}
}
