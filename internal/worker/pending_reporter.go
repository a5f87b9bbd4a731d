package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PendingCounter is satisfied by the consent registry.
type PendingCounter interface {
	Len() int
}

// PendingReporter publishes how many consent tokens are waiting for a
// confirmation. It only observes; tokens are never evicted here.
type PendingReporter struct {
	registry PendingCounter
	gauge    prometheus.Gauge
	interval time.Duration
	logger   *slog.Logger
}

func NewPendingReporter(
	registry PendingCounter,
	gauge prometheus.Gauge,
	interval time.Duration,
	logger *slog.Logger,
) *PendingReporter {
	return &PendingReporter{
		registry: registry,
		gauge:    gauge,
		interval: interval,
		logger:   logger,
	}
}

func (w *PendingReporter) Start(ctx context.Context) {
	w.logger.Info("pending token reporter started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.report(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("pending token reporter stopping")
			return
		case <-ticker.C:
			w.report(ctx)
		}
	}
}

func (w *PendingReporter) report(ctx context.Context) int {
	pending := w.registry.Len()
	w.gauge.Set(float64(pending))

	level := slog.LevelDebug
	if pending > 0 {
		level = slog.LevelInfo
	}
	w.logger.Log(ctx, level, "consent tokens awaiting confirmation", "pending", pending)
	return pending
}
