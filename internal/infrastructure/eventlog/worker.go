// Package eventlog observes domain notifications: each event becomes a
// structured log line and a prometheus counter increment.
package eventlog

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/plantnet/backend/internal/domain/event"
)

type Worker struct {
	sub     event.Subscriber
	log     *zap.Logger
	counter *prometheus.CounterVec
}

func New(sub event.Subscriber, logger *zap.Logger, reg prometheus.Registerer) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_events_total",
			Help: "Total number of domain events observed.",
		},
		[]string{"event"},
	)
	reg.MustRegister(counter)
	return &Worker{
		sub:     sub,
		log:     logger.With(zap.String("component", "eventlog_worker")),
		counter: counter,
	}
}

func (w *Worker) Start() {
	for _, name := range []string{
		event.OrderPlaced{}.EventName(),
		event.OrderCancelled{}.EventName(),
		event.StockAdjusted{}.EventName(),
		event.RoleChanged{}.EventName(),
	} {
		w.sub.Subscribe(name, w.observe)
	}
}

func (w *Worker) observe(ctx context.Context, e event.Event) {
	_ = ctx
	w.counter.WithLabelValues(e.EventName()).Inc()
	w.log.Info("domain_event", zap.String("event", e.EventName()), zap.Any("payload", e))
}
